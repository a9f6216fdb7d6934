package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/catalog"
)

// ValidationError is one catalog problem.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Resources []string          `json:"resources,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog-path>",
		Short: "Validate a resource catalog",
		Long: `Validate a CUE resource catalog, a single file or a directory.

Every resource and relation is checked and all problems are reported,
not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cat, errs := catalog.LoadPath(path, catalog.LoadModeCollectAll)

	// Nothing compiled: the path itself is unusable.
	if cat == nil && len(errs) > 0 {
		var loadErr *catalog.LoadError
		if errors.As(errs[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, errs[0].Error(), nil)
	}

	for _, name := range cat.Names() {
		formatter.VerboseLog("Validated resource: %s", name)
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, toValidationErrors(errs))
	}
	return outputValidateSuccess(formatter, cat.Names())
}

func toValidationErrors(errs []error) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, err := range errs {
		var loadErr *catalog.LoadError
		if !errors.As(err, &loadErr) {
			out = append(out, ValidationError{Code: ErrCodeGeneric, Message: err.Error()})
			continue
		}
		ve := ValidationError{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			ve.File = loadErr.Pos.Filename()
			ve.Line = loadErr.Pos.Line()
		}
		out = append(out, ve)
	}
	return out
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, resources []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Resources: resources})
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid (%d resource(s))\n", len(resources))
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Unusable paths are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		err := formatter.encode(CLIResponse{
			Status: StatusError,
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		})
		if err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
