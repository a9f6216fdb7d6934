package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/queryir"
)

func TestFormatFilter_RoundTrip(t *testing.T) {
	testCases := []struct {
		key string
		raw string
	}{
		{"age", "18,25"},
		{"|age", "18,25"},
		{"price", "10<>50"},
		{"price", "|10<>50,|60<>70"},
		{"age", ">=18,<=65,!=40,<99,>1"},
		{"name", "%jo%"},
		{"status", "draft,|published"},
		{"{meta->>'kind'}", "book"},
		{"name", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.raw, func(t *testing.T) {
			filter := CompileFilter(tc.key, tc.raw)

			key, value := FormatFilter(filter)
			assert.Equal(t, tc.key, key)
			assert.Equal(t, tc.raw, value)
			assert.Equal(t, filter, CompileFilter(key, value))
		})
	}
}

func TestFormatRelations_RoundTrip(t *testing.T) {
	spec := "posts@comments^*body=%spam%;author=admin@tags^*|name=go,rust"

	nodes, err := CompileRelations(spec)
	require.NoError(t, err)

	assert.Equal(t, spec, FormatRelations(nodes))
}

func TestFormat_RoundTrip(t *testing.T) {
	spec, err := Assemble(fullParams())
	require.NoError(t, err)

	again, err := Assemble(Format(spec))
	require.NoError(t, err)

	assert.Equal(t, spec, again)
}

func TestFormat_FetchAll(t *testing.T) {
	params := Format(&queryir.Specification{})
	assert.Empty(t, params)
}
