package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/queryir"
)

// FingerprintResult is the JSON payload of the fingerprint command.
type FingerprintResult struct {
	Fingerprint string `json:"fingerprint"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <query-string>",
		Short: "Print the cache key of a query string",
		Long: `Compile a query string and print the fingerprint of its specification.

Query strings that compile to the same specification share a fingerprint,
whatever their parameter order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(rootOpts, args[0], cmd)
		},
	}
}

func runFingerprint(opts *RootOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	spec, err := grammar.Assemble(grammar.ParseQuery(query))
	if err != nil {
		return outputGrammarError(formatter, err)
	}

	fp, err := queryir.Fingerprint(spec)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(FingerprintResult{Fingerprint: fp})
	}
	fmt.Fprintln(formatter.Writer, fp)
	return nil
}
