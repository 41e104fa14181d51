package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/choicegen/internal/engine"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayReport is the JSON payload of the replay command.
type ReplayReport struct {
	RunID      string  `json:"run_id"`
	Mode       ir.Mode `json:"mode"`
	ConfigHash string  `json:"config_hash"`
	engine.ReplayResult
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-drive a stored run and verify determinism",
		Long: `Rebuild a stored run from its recorded configuration, drive it again and
verify that it emits the same signatures in the same order.

The recorded configuration is checked against its hash before replaying.

Exit codes:
  0 - Replay is deterministic
  1 - Determinism verification failed (signatures differ)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  choicegen replay 0192... --db ./runs.db
  choicegen replay 0192... --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command, runID string) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, "unknown run", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	hash, err := ir.RunConfigHash(run.Config)
	if err != nil || hash != run.ConfigHash {
		return NewExitError(ExitCommandError, fmt.Sprintf("run %s: recorded config does not match its hash", runID))
	}

	expected, err := st.EmittedSignatures(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read attempts", err)
	}

	g, err := planFromRun(run).build(slog.Default(), nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to rebuild run", err)
	}

	result, err := engine.VerifyReplay(ctx, g.facade, g.grammar.Generate, expected, engine.WithRunID(runID))
	if err != nil {
		return WrapExitError(ExitFailure, "replay failed", err)
	}

	report := ReplayReport{RunID: runID, Mode: run.Mode, ConfigHash: run.ConfigHash, ReplayResult: result}
	if opts.Format == "json" {
		return outputReplayJSON(cmd, report)
	}
	return outputReplayText(cmd, report)
}

func outputReplayJSON(cmd *cobra.Command, report ReplayReport) error {
	response := CLIResponse{
		Status: "ok",
		Data:   report,
	}

	if !report.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDeterminism,
			Message: "determinism verification failed",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !report.Deterministic {
		return reportedExit(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, report ReplayReport) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay of run %s (%s)\n", report.RunID, report.Mode)
	fmt.Fprintf(w, "  Programs: %d recorded, %d replayed\n", report.Expected, report.Actual)

	if report.Deterministic {
		fmt.Fprintln(w, "✓ Run verified deterministic")
		return nil
	}

	if report.FirstMismatch >= 0 {
		fmt.Fprintf(w, "  First mismatch at program %d\n", report.FirstMismatch)
		fmt.Fprintf(w, "    want: %s\n", report.Want)
		fmt.Fprintf(w, "    got:  %s\n", report.Got)
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
	return reportedExit(ExitFailure, "determinism verification failed")
}

// reportedExit is an ExitError for a failure the command already printed.
func reportedExit(code int, message string) *ExitError {
	err := NewExitError(code, message)
	err.Reported = true
	return err
}
