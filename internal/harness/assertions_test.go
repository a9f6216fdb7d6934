package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertError(t *testing.T) {
	assert.NoError(t, assertError("", nil))
	assert.NoError(t, assertError("MALFORMED", errors.New("MALFORMED_GRAMMAR: bad")))

	err := assertError("", errors.New("boom"))
	var ae *AssertionError
	assert.ErrorAs(t, err, &ae)
	assert.Equal(t, "error", ae.Type)
	assert.Equal(t, "boom", ae.Actual)

	assert.Error(t, assertError("MALFORMED", nil))
	assert.Error(t, assertError("MALFORMED", errors.New("unknown resource")))
}

func TestAssertArgs(t *testing.T) {
	assert.NoError(t, assertArgs([]string{"a", "1"}, []any{"a", int64(1)}))
	assert.NoError(t, assertArgs([]string{}, nil))
	assert.Error(t, assertArgs([]string{""}, nil))
	assert.Error(t, assertArgs([]string{"a"}, []any{"b"}))
}

func TestAssertWarnings(t *testing.T) {
	assert.NoError(t, assertWarnings([]string{"w"}, []string{"w"}))
	assert.Error(t, assertWarnings([]string{}, []string{"w"}))
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{Type: "sql", Expected: "SELECT 1", Actual: "SELECT 2"}
	assert.Equal(t, "sql mismatch\n  Expected: SELECT 1\n  Actual: SELECT 2", err.Error())
}
