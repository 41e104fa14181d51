package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/choicegen/internal/store"
)

// RunsOptions holds flags for the runs and export commands.
type RunsOptions struct {
	*RootOptions
	Database string
	Output   string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Long: `List the runs recorded in a run log, oldest first.

Examples:
  choicegen runs --db ./runs.db
  choicegen runs --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <run-id> <attempt>",
		Short: "Export an attempt's decisions as a replay input",
		Long: `Write the recorded decisions of one attempt in the delta format, ready
to be passed to "choicegen delta --input".

Examples:
  choicegen export 0192... 3 --db ./runs.db > attempt3.delta
  choicegen export 0192... 3 --db ./runs.db --output attempt3.delta`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(opts.RootOptions, cmd, ExitCommandError, "failed to open database", &CodedError{Code: ErrCodeStore, Err: err})
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return fail(opts.RootOptions, cmd, ExitCommandError, "failed to list runs", &CodedError{Code: ErrCodeStore, Err: err})
	}

	return newOutput(opts.RootOptions, cmd).Success(runs, func(w io.Writer) error {
		return writeRunsTable(w, runs)
	})
}

func writeRunsTable(w io.Writer, runs []store.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found in database.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tMODE\tSEED\tMAX DEPTH\tATTEMPTS\tEMITTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.Seq, r.ID, r.Mode, uint64(r.Seed), r.MaxDepth, r.Attempts, r.Emitted)
	}
	return tw.Flush()
}

func runExport(opts *RunsOptions, cmd *cobra.Command, runID, attempt string) error {
	ctx := context.Background()

	seq, err := strconv.ParseInt(attempt, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid attempt number", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if _, err := st.ReadRun(ctx, runID); err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, "unknown run", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var buf bytes.Buffer
	if err := st.ExportDelta(ctx, runID, seq, &buf); err != nil {
		return WrapExitError(ExitCommandError, "failed to export attempt", err)
	}

	if opts.Output != "" {
		if err := writeFileAtomic(opts.Output, &buf); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		return nil
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
