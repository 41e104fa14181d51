package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/choicegen/internal/engine"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/prob"
)

// ProbsOptions holds flags for the probs dump command.
type ProbsOptions struct {
	*RootOptions
	Actual bool
	Random bool
	Seed   uint64
	File   string
}

// ProbsCheckResult is the JSON payload of probs check.
type ProbsCheckResult struct {
	File  string   `json:"file"`
	Valid bool     `json:"valid"`
	Names []string `json:"names"`
}

// NewProbsCommand creates the probs command group.
func NewProbsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probs",
		Short: "Inspect probability configurations",
		Long: `Dump and check the probability table that weighs the grammar's choices.

The text format holds one entry per line:

  name=weight                    a single flag, 0-100
  [group,a=30,b=60,c=100]        exclusive group, cumulative thresholds
  (group,a=1,b=0,c=1)            equal group, members on or off

Lines starting with # are comments.`,
	}

	cmd.AddCommand(newProbsDumpCommand(rootOpts))
	cmd.AddCommand(newProbsCheckCommand(rootOpts))
	return cmd
}

func newProbsDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the probability table",
		Long: `Print the probability table in the text format.

By default the built-in weights are printed. --random redraws the weights
from --seed the way "generate --random-probabilities" does, then --file
overrides them entry by entry. --actual prints the resulting weights instead
of the defaults.

Examples:
  choicegen probs dump > probs.txt
  choicegen probs dump --random --seed 42 --actual`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbsDump(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Actual, "actual", false, "print current weights instead of defaults")
	cmd.Flags().BoolVar(&opts.Random, "random", false, "randomize weights from --seed")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for --random")
	cmd.Flags().StringVar(&opts.File, "file", "", "probability file to apply first")
	return cmd
}

func newProbsCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a probability file",
		Long: `Validate a probability file against the built-in table.

Exit codes:
  0 - File is valid
  2 - File is unreadable or invalid`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbsCheck(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runProbsDump(opts *ProbsOptions, cmd *cobra.Command) error {
	f := engine.New()
	if err := f.Select(ir.KindDefault, opts.Seed); err != nil {
		return fail(opts.RootOptions, cmd, ExitFailure, "select random provider", err)
	}
	t := prob.Defaults()
	if err := t.Initialize(f.PureUpto, opts.Random); err != nil {
		return fail(opts.RootOptions, cmd, ExitFailure, "initialize probabilities", err)
	}
	if opts.File != "" {
		if err := t.ParseFile(opts.File); err != nil {
			return fail(opts.RootOptions, cmd, ExitCommandError, "invalid probabilities", &CodedError{Code: ErrCodeProbabilities, Err: err})
		}
	}

	var b strings.Builder
	var err error
	if opts.Actual {
		err = t.DumpActual(&b, opts.Seed)
	} else {
		err = t.DumpDefaults(&b)
	}
	if err != nil {
		return err
	}

	table := b.String()
	return newOutput(opts.RootOptions, cmd).Success(map[string]string{"table": table}, func(w io.Writer) error {
		_, err := io.WriteString(w, table)
		return err
	})
}

func runProbsCheck(rootOpts *RootOptions, cmd *cobra.Command, path string) error {
	t := prob.Defaults()
	if err := t.ParseFile(path); err != nil {
		return fail(rootOpts, cmd, ExitCommandError, "invalid probabilities", &CodedError{Code: ErrCodeProbabilities, Err: err})
	}

	result := ProbsCheckResult{File: path, Valid: true, Names: t.Names()}
	return newOutput(rootOpts, cmd).Success(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s: %d entries valid\n", path, len(result.Names))
		return err
	})
}
