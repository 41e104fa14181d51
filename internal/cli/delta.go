package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/choicegen/internal/ir"
)

// DeltaOptions holds flags for the delta command.
type DeltaOptions struct {
	*RootOptions
	runFlags
}

// NewDeltaCommand creates the delta command.
func NewDeltaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeltaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delta",
		Short: "Replay a recorded decision sequence",
		Long: `Replay the value/bound pairs of a recorded program and continue randomly.

Decisions are served from --input until the switch point, then drawn from
the seeded random source. The switch point is drawn from the seed unless
--switch-point fixes it. With --no-reduction the whole input is replayed,
reproducing the recorded program exactly. Exactly one attempt is made.

Exit codes:
  0 - Program generated
  1 - Replay failed (input does not match the grammar, etc.)
  2 - Command error (bad configuration, unreadable files, etc.)

Examples:
  choicegen delta --input ./last.delta --seed 3
  choicegen delta --input ./last.delta --no-reduction
  choicegen delta --input ./last.delta --switch-point 10 --delta-output ./next.delta`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeneration(opts.RootOptions, cmd, ir.ModeDelta, &opts.runFlags, "count")
		},
	}

	bindRunFlags(cmd, &opts.runFlags, "count", "ignored; replay runs make one attempt", 1)
	_ = cmd.Flags().MarkHidden("count")
	cmd.Flags().StringVar(&opts.DeltaIn, "input", "", "recorded decision sequence to replay")
	cmd.Flags().BoolVar(&opts.NoReduction, "no-reduction", false, "replay the whole input")
	cmd.Flags().IntVar(&opts.SwitchPoint, "switch-point", -1, "replay depth at which to continue randomly (-1 = draw)")
	return cmd
}
