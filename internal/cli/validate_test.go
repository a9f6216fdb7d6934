package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invalidCatalog = `
resource: posts: relations: {
	comments: {foreign_key: "post_id"}
	tags: {kind: "many_to_many"}
}
resource: users: relations: posts: {kind: "sometimes"}
`

func TestValidate_Valid(t *testing.T) {
	out, err := executeCommand(t, "validate", blogCatalogFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Catalog valid (4 resource(s))")
}

func TestValidate_Directory(t *testing.T) {
	dir := filepath.Dir(blogCatalogFile(t))

	out, err := executeCommand(t, "validate", dir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.ElementsMatch(t, []string{"comments", "posts", "tags", "users"}, resp.Data.Resources)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", invalidCatalog)

	out, err := executeCommand(t, "validate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Len(t, resp.Data.Errors, 2, "one error per invalid resource")
}

func TestValidate_TextFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", invalidCatalog)

	out, err := executeCommand(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "kind is required")
}

func TestValidate_MissingPath(t *testing.T) {
	_, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
