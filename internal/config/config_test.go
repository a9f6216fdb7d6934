package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.HTTP.AllowRaw)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "sieve.db", cfg.DB.DSN)
	assert.Equal(t, "catalog", cfg.Catalog.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sieve.yaml")
	content := `
http:
  addr: "127.0.0.1:9000"
  allow_raw: true
db:
  driver: postgres
  dsn: postgres://localhost/sieve
catalog:
  dir: /etc/sieve/catalog
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.AllowRaw)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/sieve", cfg.DB.DSN)
	assert.Equal(t, "/etc/sieve/catalog", cfg.Catalog.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sieve.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  dsn: from-file.db\n"), 0o644))

	t.Setenv("SIEVE_DB_DSN", "from-env.db")
	t.Setenv("SIEVE_HTTP_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DB.DSN)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.DB.Driver = "mysql"
	cfg.DB.DSN = ""
	cfg.Log.Format = "xml"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db.driver")
	assert.Contains(t, err.Error(), "db.dsn is required")
	assert.Contains(t, err.Error(), "log.format")
}
