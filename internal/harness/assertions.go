package harness

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/store"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Type     string // Expectation kind: sql, args, error, warnings, rows
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s mismatch\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// assertError checks that err is set and contains expected. An empty
// expectation means no error was allowed.
func assertError(expected string, err error) error {
	switch {
	case expected == "" && err != nil:
		return &AssertionError{Type: "error", Expected: "no error", Actual: err.Error()}
	case expected != "" && err == nil:
		return &AssertionError{Type: "error", Expected: expected, Actual: "no error"}
	case expected != "" && !strings.Contains(err.Error(), expected):
		return &AssertionError{Type: "error", Expected: expected, Actual: err.Error()}
	}
	return nil
}

func assertSQL(expected, actual string) error {
	if expected != actual {
		return &AssertionError{Type: "sql", Expected: expected, Actual: actual}
	}
	return nil
}

// assertArgs compares bound values by their string form.
func assertArgs(expected []string, actual []any) error {
	got := stringify(actual)
	if !slices.Equal(expected, got) {
		return &AssertionError{Type: "args", Expected: fmt.Sprintf("%q", expected), Actual: fmt.Sprintf("%q", got)}
	}
	return nil
}

func assertWarnings(expected, actual []string) error {
	if !slices.Equal(expected, actual) {
		return &AssertionError{Type: "warnings", Expected: fmt.Sprintf("%q", expected), Actual: fmt.Sprintf("%q", actual)}
	}
	return nil
}

// assertRows executes the plan against the fixture and compares the key
// column of every returned row, in order.
func (h *Harness) assertRows(ctx context.Context, expected []string, plan *querysql.Plan) error {
	result, err := store.Execute(ctx, h.fixture, plan)
	if err != nil {
		return &AssertionError{Type: "rows", Expected: fmt.Sprintf("%q", expected), Actual: err.Error()}
	}

	keys := make([]any, len(result.Rows))
	for i, row := range result.Rows {
		keys[i] = row[plan.Resource.Key]
	}
	got := stringify(keys)
	if !slices.Equal(expected, got) {
		return &AssertionError{Type: "rows", Expected: fmt.Sprintf("%q", expected), Actual: fmt.Sprintf("%q", got)}
	}
	return nil
}

func stringify(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
