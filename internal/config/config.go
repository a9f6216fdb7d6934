// Package config loads sieve settings from an optional config file and
// SIEVE_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix: SIEVE_DB_DSN -> db.dsn.
const EnvPrefix = "SIEVE"

// Config is the full sieve configuration.
type Config struct {
	HTTP    HTTP    `mapstructure:"http"`
	DB      DB      `mapstructure:"db"`
	Catalog Catalog `mapstructure:"catalog"`
	Log     Log     `mapstructure:"log"`
}

// HTTP configures the query API listener.
type HTTP struct {
	Addr string `mapstructure:"addr"`

	// AllowRaw enables {expr} filters, which reach SQL verbatim.
	AllowRaw bool `mapstructure:"allow_raw"`
}

// DB selects the executor. Driver is "sqlite" or "postgres"; DSN is a file
// path for sqlite and a connection URL for postgres.
type DB struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`

	// Schema is an optional SQL file applied at startup.
	Schema string `mapstructure:"schema"`
}

// Catalog points at the directory of CUE resource definitions.
type Catalog struct {
	Dir string `mapstructure:"dir"`
}

// Log configures the root logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"http.addr":      ":8080",
	"http.allow_raw": false,
	"db.driver":      "sqlite",
	"db.dsn":         "sieve.db",
	"db.schema":      "",
	"catalog.dir":    "catalog",
	"log.level":      "info",
	"log.format":     "json",
}

// Load reads path (optional; empty skips the file) and overlays
// environment variables. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("db.driver must be sqlite or postgres, got %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn is required"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
