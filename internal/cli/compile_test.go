package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/queryir"
)

func TestCompile_TextSpecification(t *testing.T) {
	out, err := executeCommand(t, "compile", "status=published&orderBy=views")
	require.NoError(t, err)

	// Predicates marshal one way; decode generically.
	var spec struct {
		Filters []map[string]any   `json:"filters"`
		Order   *queryir.OrderSpec `json:"order"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &spec))
	require.Len(t, spec.Filters, 1)
	assert.Equal(t, "status", spec.Filters[0]["column"])
	require.NotNil(t, spec.Order)
	assert.Equal(t, []string{"views"}, spec.Order.Columns)
	assert.Equal(t, queryir.Desc, spec.Order.Direction)
}

func TestCompile_TextPlan(t *testing.T) {
	cat := blogCatalogFile(t)

	out, err := executeCommand(t, "compile", "status=published", "--catalog", cat, "--resource", "posts")
	require.NoError(t, err)
	assert.Contains(t, out, "root: SELECT * FROM posts WHERE status = ? ORDER BY posts.id ASC\n")
	assert.Contains(t, out, "count: SELECT COUNT(*) FROM posts WHERE status = ?\n")
	assert.Contains(t, out, `args: ["published"]`)
}

func TestCompile_PostgresPlaceholders(t *testing.T) {
	cat := blogCatalogFile(t)

	out, err := executeCommand(t, "compile", "status=published&views=>10",
		"--catalog", cat, "--resource", "posts", "--dialect", "postgres")
	require.NoError(t, err)
	assert.Contains(t, out, "WHERE status = $1 AND views > $2")
}

func TestCompile_JSON(t *testing.T) {
	out, err := executeCommand(t, "compile", "views=10<>", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status  string `json:"status"`
		TraceID string `json:"trace_id"`
		Data    struct {
			Fingerprint string          `json:"fingerprint"`
			Warnings    []string        `json:"warnings"`
			Plan        json.RawMessage `json:"plan"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Len(t, resp.Data.Fingerprint, 64)
	assert.NotEmpty(t, resp.Data.Warnings, "empty range bound should be reported")
	assert.Empty(t, resp.Data.Plan)
}

func TestCompile_MalformedQuery(t *testing.T) {
	out, err := executeCommand(t, "compile", "json=nocolon", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MALFORMED_GRAMMAR", resp.Error.Code)
}

func TestCompile_ResourceRequiresCatalog(t *testing.T) {
	_, err := executeCommand(t, "compile", "a=1", "--resource", "posts")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompile_UnknownResource(t *testing.T) {
	cat := blogCatalogFile(t)

	_, err := executeCommand(t, "compile", "a=1", "--catalog", cat, "--resource", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompile_InvalidDialect(t *testing.T) {
	cat := blogCatalogFile(t)

	_, err := executeCommand(t, "compile", "a=1", "--catalog", cat, "--resource", "posts", "--dialect", "mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeInvalidDialect)
}

func TestCompile_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")

	_, err := executeCommand(t, "compile", "status=published", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status"`)
}
