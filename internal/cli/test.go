package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // suite filter (glob pattern)
}

// SuiteResult holds the result of a single suite file.
type SuiteResult struct {
	Name   string               `json:"name"`
	File   string               `json:"file"`
	Pass   bool                 `json:"pass"`
	Cases  []harness.CaseResult `json:"cases,omitempty"`
	Errors []string             `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Suites []SuiteResult `json:"suites"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
	Total  int           `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <suite-file-or-dir>",
		Short: "Run conformance suites",
		Long: `Run YAML conformance suites through the compiler.

Each case compiles a query string and checks the SQL, bound arguments,
warnings, errors and (with a fixture schema) the returned rows. When
golden/<suite>.golden exists next to a suite file its plan snapshot must
match.

Exit codes:
  0 - All suites passed
  1 - One or more suites failed
  2 - Command error (invalid paths, etc.)

Examples:
  sieve test ./suites
  sieve test ./suites --filter "blog*"
  sieve test ./suites/blog.yaml --update
  sieve test ./suites --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("suite path not found: %s", path))
	}

	suiteFiles, err := findSuiteFiles(path, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find suites", err)
	}

	if len(suiteFiles) == 0 {
		if formatter.Format == "json" {
			return outputTestJSON(formatter, TestResult{Suites: []SuiteResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No suites found.")
		return nil
	}

	result := TestResult{
		Suites: make([]SuiteResult, 0, len(suiteFiles)),
		Total:  len(suiteFiles),
	}

	for _, file := range suiteFiles {
		formatter.VerboseLog("Running suite file: %s", file)
		sr := runSuite(file, opts)
		if formatter.Format != "json" {
			printSuiteResult(formatter.Writer, sr)
		}
		result.Suites = append(result.Suites, sr)

		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter.Writer, result)
}

// findSuiteFiles returns path itself when it is a file, otherwise every
// YAML file below it whose base name matches filter.
func findSuiteFiles(path string, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})

	return files, err
}

// runSuite loads and runs one suite file, then checks or rewrites its
// golden snapshot.
func runSuite(file string, opts *TestOptions) SuiteResult {
	sr := SuiteResult{Name: filepath.Base(file), File: file}

	suite, err := harness.LoadSuite(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load error: %v", err)}
		return sr
	}
	sr.Name = suite.Name

	result, err := harness.Run(suite)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution error: %v", err)}
		return sr
	}
	sr.Cases = result.Cases
	sr.Pass = result.Pass

	goldenPath := goldenFilePath(file)
	snapshot := harness.Snapshot(result)

	if opts.Update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to update golden file: %v", err))
		}
		return sr
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		// No golden file - use expectations only
		return sr
	}
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return sr
	}
	if !bytes.Equal(golden, snapshot) {
		sr.Pass = false
		sr.Errors = append(sr.Errors, "snapshot does not match golden file (run with --update to regenerate)")
	}
	return sr
}

// goldenFilePath returns the path to the golden file for a suite file.
func goldenFilePath(suiteFile string) string {
	dir := filepath.Dir(suiteFile)
	base := filepath.Base(suiteFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func printSuiteResult(w io.Writer, sr SuiteResult) {
	if sr.Pass {
		fmt.Fprintf(w, "✓ %s (%d case(s))\n", sr.Name, len(sr.Cases))
		return
	}
	fmt.Fprintf(w, "✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	for _, c := range sr.Cases {
		if c.Pass {
			continue
		}
		fmt.Fprintf(w, "  ✗ %s\n", c.Name)
		for _, e := range c.Errors {
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(e, "\n", "\n    "))
		}
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{Status: StatusOK, Data: result}
	if result.Failed > 0 {
		response.Status = StatusError
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d suite(s) failed", result.Failed),
		}
	}

	if err := formatter.encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(w io.Writer, result TestResult) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All suites passed")
	return nil
}
