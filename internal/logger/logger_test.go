package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Logging{Level: "debug", Out: &buf}))

	l := GetLogger("http")
	assert.Equal(t, "http", l.Module())
	l.Info().Str("path", "/posts").Msg("request")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "http", event["module"])
	assert.Equal(t, "request", event["message"])
	assert.Equal(t, "/posts", event["path"])
	assert.Equal(t, "info", event["level"])
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Logging{Out: &buf}))

	l := GetLogger("cli").Named("serve")
	assert.Equal(t, "cli.serve", l.Module())

	root := GetLogger()
	assert.Equal(t, "root", root.Module())
	assert.Equal(t, "store", root.Named("store").Module())

	l.Info().Msg("nested")
	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "cli.serve", event["module"])
}

func TestInit_Level(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Logging{Level: "warn", Out: &buf}))

	GetLogger("test").Info().Msg("dropped")
	assert.Empty(t, buf.String())

	GetLogger("test").Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInit_BadLevel(t *testing.T) {
	assert.Error(t, Init(Logging{Level: "loud"}))
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Logging{Format: "console", Out: &buf}))

	GetLogger("test").Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "test")
}
