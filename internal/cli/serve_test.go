package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/testutil"
)

func TestServeConfig_FlagsOverride(t *testing.T) {
	opts := &ServeOptions{
		RootOptions: &RootOptions{Verbose: true},
		Addr:        ":9999",
		DSN:         "blog.db",
		Catalog:     "cat",
	}

	cfg, err := serveConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "blog.db", cfg.DB.DSN)
	assert.Equal(t, "cat", cfg.Catalog.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestServeConfig_RawExpressions(t *testing.T) {
	cfg, err := serveConfig(&ServeOptions{RootOptions: &RootOptions{}})
	require.NoError(t, err)
	assert.False(t, cfg.HTTP.AllowRaw)

	cfg, err = serveConfig(&ServeOptions{RootOptions: &RootOptions{}, AllowRaw: true})
	require.NoError(t, err)
	assert.True(t, cfg.HTTP.AllowRaw)

	t.Setenv("SIEVE_HTTP_ALLOW_RAW", "true")
	cfg, err = serveConfig(&ServeOptions{RootOptions: &RootOptions{}})
	require.NoError(t, err)
	assert.True(t, cfg.HTTP.AllowRaw)
}

func TestServeCommand_AllowRawFlag(t *testing.T) {
	cmd := NewServeCommand(&RootOptions{})
	flag := cmd.Flags().Lookup("allow-raw")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestServeConfig_InvalidDriver(t *testing.T) {
	opts := &ServeOptions{RootOptions: &RootOptions{}, Driver: "mysql"}

	_, err := serveConfig(opts)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServeConfig_MissingConfigFile(t *testing.T) {
	opts := &ServeOptions{RootOptions: &RootOptions{Config: filepath.Join(t.TempDir(), "none.yaml")}}

	_, err := serveConfig(opts)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOpenFinder_SQLiteWithSchema(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.sql", testutil.BlogSchema)

	opts := &ServeOptions{
		RootOptions: &RootOptions{},
		DSN:         filepath.Join(dir, "blog.db"),
		Schema:      schema,
	}
	cfg, err := serveConfig(opts)
	require.NoError(t, err)

	finder, closeFn, err := openFinder(context.Background(), cfg, testutil.BlogCatalog(t))
	require.NoError(t, err)
	defer closeFn()

	spec, err := grammar.Assemble(grammar.ParseQuery("status=published"))
	require.NoError(t, err)
	result, err := finder.Find(context.Background(), "posts", spec)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestOpenFinder_MissingSchema(t *testing.T) {
	dir := t.TempDir()
	opts := &ServeOptions{
		RootOptions: &RootOptions{},
		DSN:         filepath.Join(dir, "blog.db"),
		Schema:      filepath.Join(dir, "missing.sql"),
	}
	cfg, err := serveConfig(opts)
	require.NoError(t, err)

	_, _, err = openFinder(context.Background(), cfg, testutil.BlogCatalog(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply schema")
}
