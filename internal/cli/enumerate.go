package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/choicegen/internal/ir"
)

// EnumerateOptions holds flags for the enumerate command.
type EnumerateOptions struct {
	*RootOptions
	runFlags
}

// NewEnumerateCommand creates the enumerate command.
func NewEnumerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EnumerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Enumerate programs depth-first",
		Long: `Enumerate every program whose decision sequence fits within --max-depth.

Decisions are explored depth-first, smallest value first. Each program's
signature is its decision sequence, so no two emitted programs share one.
--limit stops after that many programs; 0 enumerates the whole tree.
--debug-sequence replays one decision sequence, given as a signature
("1_0_2"), instead of searching.

Exit codes:
  0 - Enumeration finished
  1 - Generation failed
  2 - Command error (bad configuration, unreadable files, etc.)

Examples:
  choicegen enumerate --max-depth 12 --limit 100
  choicegen enumerate --max-depth 12 --debug-sequence 1_0_2
  choicegen enumerate --max-depth 12 --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeneration(opts.RootOptions, cmd, ir.ModeExhaustive, &opts.runFlags, "limit")
		},
	}

	bindRunFlags(cmd, &opts.runFlags, "limit", "stop after this many programs (0 = whole tree)", 0)
	cmd.Flags().StringVar(&opts.DebugSequence, "debug-sequence", "", "decision sequence to replay instead of searching (e.g. 1_0_2)")
	return cmd
}
