package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	a, err := executeCommand(t, "fingerprint", "status=published&views=>10")
	require.NoError(t, err)
	b, err := executeCommand(t, "fingerprint", "views=>10&status=published")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, strings.TrimSpace(a), 64)
}

func TestFingerprint_DiffersByValue(t *testing.T) {
	a, err := executeCommand(t, "fingerprint", "status=published")
	require.NoError(t, err)
	b, err := executeCommand(t, "fingerprint", "status=draft")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFingerprint_JSON(t *testing.T) {
	out, err := executeCommand(t, "fingerprint", "status=published", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   FingerprintResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data.Fingerprint, 64)
}

func TestFingerprint_Malformed(t *testing.T) {
	_, err := executeCommand(t, "fingerprint", "page=abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
