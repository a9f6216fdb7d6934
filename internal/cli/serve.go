package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/config"
	"github.com/roach88/sieve/internal/httpapi"
	"github.com/roach88/sieve/internal/logger"
	"github.com/roach88/sieve/internal/pgstore"
	"github.com/roach88/sieve/internal/store"
)

// ServeOptions holds flags for the serve command. Empty flags leave the
// configured value in place.
type ServeOptions struct {
	*RootOptions
	Addr    string
	Driver  string
	DSN     string
	Catalog string
	Schema  string

	AllowRaw bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query HTTP API",
		Long: `Serve GET /{resource} over HTTP.

Settings come from --config, then SIEVE_* environment variables
(SIEVE_DB_DSN, SIEVE_HTTP_ADDR, ...), then flags.

Examples:
  sieve serve --catalog ./catalog --dsn blog.db
  sieve serve --driver postgres --dsn postgres://localhost/blog`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address")
	cmd.Flags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite|postgres)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "sqlite file path or postgres URL")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog file or directory")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "SQL file applied at startup")
	cmd.Flags().BoolVar(&opts.AllowRaw, "allow-raw", false, "accept {expr} filters (trusted callers only)")

	return cmd
}

// serveConfig loads the configuration and applies flag overrides.
func serveConfig(opts *ServeOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	for _, o := range []struct {
		flag   string
		target *string
	}{
		{opts.Addr, &cfg.HTTP.Addr},
		{opts.Driver, &cfg.DB.Driver},
		{opts.DSN, &cfg.DB.DSN},
		{opts.Catalog, &cfg.Catalog.Dir},
		{opts.Schema, &cfg.DB.Schema},
	} {
		if o.flag != "" {
			*o.target = o.flag
		}
	}
	if opts.AllowRaw {
		cfg.HTTP.AllowRaw = true
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, err := serveConfig(opts)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Logging{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return WrapExitError(ExitCommandError, "invalid log level", err)
	}
	l := logger.GetLogger("serve")

	cat, errs := catalog.LoadPath(cfg.Catalog.Dir, catalog.LoadModeFailFast)
	if len(errs) > 0 {
		return WrapExitError(ExitCommandError, "failed to load catalog", errors.Join(errs...))
	}
	l.Info().Strs("resources", cat.Names()).Str("catalog", cfg.Catalog.Dir).Msg("Loaded catalog")

	finder, closeFn, err := openFinder(ctx, cfg, cat)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeFn()
	l.Info().Str("driver", cfg.DB.Driver).Msg("Opened database")

	if cfg.HTTP.AllowRaw {
		l.Warn().Msg("Raw {expr} filters are enabled")
	}
	srv := httpapi.New(finder,
		httpapi.WithLogger(logger.GetLogger("http")),
		httpapi.WithRawExpressions(cfg.HTTP.AllowRaw),
	)
	if err := srv.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil {
		return WrapExitError(ExitFailure, "server stopped", err)
	}
	l.Info().Msg("Server stopped")
	return nil
}

// schemaApplier is implemented by both executors.
type schemaApplier interface {
	httpapi.Finder
	ApplySchema(ctx context.Context, schema string) error
}

// openFinder opens the configured executor and applies the startup schema.
func openFinder(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (httpapi.Finder, func(), error) {
	var (
		finder  schemaApplier
		closeFn func()
	)
	switch cfg.DB.Driver {
	case "postgres":
		pg, err := pgstore.Open(ctx, cfg.DB.DSN, cat)
		if err != nil {
			return nil, nil, err
		}
		finder, closeFn = pg, pg.Close
	default:
		st, err := store.Open(cfg.DB.DSN, cat)
		if err != nil {
			return nil, nil, err
		}
		finder, closeFn = st, func() { _ = st.Close() }
	}

	if cfg.DB.Schema != "" {
		schema, err := os.ReadFile(cfg.DB.Schema)
		if err == nil {
			err = finder.ApplySchema(ctx, string(schema))
		}
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to apply schema %s: %w", cfg.DB.Schema, err)
		}
	}
	return finder, closeFn, nil
}
