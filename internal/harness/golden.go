package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders every case of a result: the full plan of compiled cases
// (root, count and eager statements) or the compile error.
func Snapshot(result *Result) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "suite: %s\n", result.Suite)
	for _, c := range result.Cases {
		fmt.Fprintf(&sb, "\n== %s ==\n", c.Name)
		switch {
		case c.Err != nil:
			fmt.Fprintf(&sb, "error: %s\n", c.Err)
		case c.Plan != nil:
			sb.WriteString(c.Plan.Describe())
		}
	}
	return []byte(sb.String())
}

// RunWithGolden runs a suite and compares its snapshot against
// testdata/golden/{suite.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the suite cannot be run. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, suite *Suite) (*Result, error) {
	t.Helper()

	result, err := Run(suite)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, suite.Name, Snapshot(result))
	return result, nil
}
