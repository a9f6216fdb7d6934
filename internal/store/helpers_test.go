package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/testutil"
)

// createTestStore creates a store seeded with the blog fixture.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testutil.BlogCatalog(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	testutil.SeedBlog(t, s.DB())
	return s
}

func find(t *testing.T, s *Store, resource string, params queryir.Params) *Result {
	t.Helper()
	spec, err := grammar.Assemble(params)
	require.NoError(t, err)

	result, err := s.Find(context.Background(), resource, spec)
	require.NoError(t, err)
	return result
}

func ids(rows []Row) []int64 {
	out := make([]int64, len(rows))
	for i, row := range rows {
		out[i] = row["id"].(int64)
	}
	return out
}
