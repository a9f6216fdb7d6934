package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/querysql"
)

// Error codes used by the CLI outside the grammar's own codes.
const (
	ErrCodeGeneric        = "E001"
	ErrCodeCatalog        = "E101"
	ErrCodeQuery          = "E102"
	ErrCodeWriteFailed    = "E103"
	ErrCodeInvalidDialect = "E104"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Dialect  string // sqlite | postgres
	Catalog  string // catalog file or directory
	Resource string // resource to render SQL for
	Output   string // output file path
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	Specification *queryir.Specification `json:"specification"`
	Fingerprint   string                 `json:"fingerprint"`
	Warnings      []string               `json:"warnings,omitempty"`
	Plan          *querysql.Plan         `json:"plan,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-string>",
		Short: "Compile a query string to a specification or SQL",
		Long: `Compile a URL query string into a filter specification.

With --catalog and --resource the specification is also rendered as SQL
for the chosen dialect.

Examples:
  sieve compile 'status=published&views=10<>500'
  sieve compile 'relations=comments' --catalog ./catalog --resource posts
  sieve compile 'tags=go' --format json --dialect postgres --catalog ./catalog --resource posts`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", string(querysql.SQLite), "SQL dialect (sqlite|postgres)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog file or directory")
	cmd.Flags().StringVar(&opts.Resource, "resource", "", "resource to render SQL for (requires --catalog)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the specification JSON to a file")

	return cmd
}

func runCompile(opts *CompileOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Resource != "" && opts.Catalog == "" {
		return outputCompileError(formatter, ErrCodeGeneric, "--resource requires --catalog", nil)
	}

	spec, err := grammar.Assemble(grammar.ParseQuery(query))
	if err != nil {
		return outputGrammarError(formatter, err)
	}

	inspection := queryir.Inspect(spec)
	for _, w := range inspection.Warnings {
		formatter.VerboseLog("warning: %s", w)
	}

	fp, err := queryir.Fingerprint(spec)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	result := &CompilationResult{
		Specification: spec,
		Fingerprint:   fp,
		Warnings:      inspection.Warnings,
	}

	if opts.Resource != "" {
		plan, err := compilePlan(opts, spec, formatter)
		if err != nil {
			return err
		}
		result.Plan = plan
	}

	if opts.Output != "" {
		if err := writeSpecToFile(spec, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote specification to %s", opts.Output)
	}

	return outputCompileSuccess(formatter, result)
}

func compilePlan(opts *CompileOptions, spec *queryir.Specification, formatter *OutputFormatter) (*querysql.Plan, error) {
	dialect, err := querysql.ParseDialect(opts.Dialect)
	if err != nil {
		return nil, outputCompileError(formatter, ErrCodeInvalidDialect, err.Error(), nil)
	}

	cat, errs := catalog.LoadPath(opts.Catalog, catalog.LoadModeFailFast)
	if len(errs) > 0 {
		var loadErr *catalog.LoadError
		if errors.As(errs[0], &loadErr) {
			return nil, outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return nil, outputCompileError(formatter, ErrCodeCatalog, errs[0].Error(), nil)
	}
	formatter.VerboseLog("Loaded catalog with %d resource(s)", len(cat.Names()))

	plan, err := querysql.Compile(dialect, cat, opts.Resource, spec)
	if err != nil {
		return nil, outputCompileError(formatter, ErrCodeQuery, err.Error(), nil)
	}
	return plan, nil
}

// outputCompileSuccess prints the plan when one was built, the indented
// specification otherwise.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.Plan != nil {
		fmt.Fprint(w, result.Plan.Describe())
	} else {
		data, err := json.MarshalIndent(result.Specification, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}

// outputGrammarError reports a query that could not be compiled.
func outputGrammarError(formatter *OutputFormatter, err error) error {
	var ce *grammar.CompileError
	if errors.As(err, &ce) {
		details := map[string]string{"param": ce.Param}
		return outputCompileError(formatter, string(ce.Code), ce.Message, details)
	}
	return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// writeSpecToFile writes the canonical specification JSON.
func writeSpecToFile(spec *queryir.Specification, path string) error {
	data, err := queryir.MarshalCanonical(spec)
	if err != nil {
		return fmt.Errorf("marshal specification: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
