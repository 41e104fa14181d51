package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/choicegen/internal/engine"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/metrics"
	"github.com/roach88/choicegen/internal/sequence"
	"github.com/roach88/choicegen/internal/store"
)

// runIDs names stored runs. Tests replace it with a fixed generator.
var runIDs engine.RunIDGenerator = engine.UUIDv7Generator{}

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	runFlags
}

// Program is one emitted program in a generation report.
type Program struct {
	Seq       int64  `json:"seq"`
	Signature string `json:"signature"`
	Program   string `json:"program"`
}

// Report is the JSON payload of generate, enumerate and delta.
type Report struct {
	RunID      string       `json:"run_id,omitempty"`
	Mode       ir.Mode      `json:"mode"`
	Seed       uint64       `json:"seed"`
	ConfigHash string       `json:"config_hash"`
	Stats      engine.Stats `json:"stats"`
	Programs   []Program    `json:"programs"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random programs",
		Long: `Generate programs with decisions drawn from a seeded random source.

The same seed and probability configuration always produce the same
programs. Use --delta-output to save the decisions of the last program as
the input of a later "choicegen delta" run.

Exit codes:
  0 - Programs generated
  1 - Generation failed
  2 - Command error (bad configuration, unreadable files, etc.)

Examples:
  choicegen generate --seed 42
  choicegen generate --seed 42 --count 10 --db ./runs.db
  choicegen generate --seed 42 --delta-output ./last.delta`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeneration(opts.RootOptions, cmd, ir.ModeRandom, &opts.runFlags, "count")
		},
	}

	bindRunFlags(cmd, &opts.runFlags, "count", "number of programs to generate", 1)
	return cmd
}

// runGeneration resolves the configuration for mode, drives the grammar and
// reports the emitted programs. It backs generate, enumerate and delta.
func runGeneration(root *RootOptions, cmd *cobra.Command, mode ir.Mode, flags *runFlags, countName string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(root, cmd, mode, flags, countName)
	if err != nil {
		return fail(root, cmd, ExitCommandError, "invalid configuration", err)
	}
	p, err := newPlan(cfg)
	if err != nil {
		return fail(root, cmd, ExitCommandError, "invalid configuration", err)
	}

	m := metrics.New()
	g, err := p.build(slog.Default(), m)
	if err != nil {
		return fail(root, cmd, ExitCommandError, "invalid configuration", err)
	}

	hashInput := p.hashInput()
	configHash, err := ir.RunConfigHash(hashInput)
	if err != nil {
		return fail(root, cmd, ExitCommandError, "hash run configuration", err)
	}

	report := Report{Mode: cfg.Mode, Seed: p.seed, ConfigHash: configHash, Programs: []Program{}}
	driveOpts := []engine.DriveOption{
		engine.WithCount(cfg.Programs),
		engine.WithAttemptLimit(cfg.MaxAttempts),
	}

	var st *store.Store
	if cfg.DB != "" {
		st, err = store.Open(cfg.DB)
		if err != nil {
			return fail(root, cmd, ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		seq, err := st.NextRunSeq(ctx)
		if err != nil {
			return fail(root, cmd, ExitCommandError, "failed to open database", err)
		}
		report.RunID = runIDs.Generate()
		run := ir.Run{
			ID:            report.RunID,
			Mode:          cfg.Mode,
			Seed:          int64(p.seed),
			MaxDepth:      cfg.MaxDepth,
			Config:        hashInput,
			ConfigHash:    configHash,
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
			Seq:           seq,
		}
		if err := st.WriteRun(ctx, run); err != nil {
			return fail(root, cmd, ExitCommandError, "failed to record run", err)
		}
		driveOpts = append(driveOpts, engine.WithRunID(report.RunID), engine.WithFailedAttempts())
	}

	var banner bytes.Buffer
	if err := g.facade.WriteStatistics(&banner); err != nil {
		return fail(root, cmd, ExitFailure, "generation failed", err)
	}

	var lastDecisions []ir.Decision
	stats, driveErr := g.facade.Drive(ctx, g.grammar.Generate, func(o engine.Outcome) error {
		if st != nil {
			att := ir.Attempt{
				RunID:     report.RunID,
				Seq:       o.Seq,
				Status:    o.Status,
				Signature: o.Signature,
				Decisions: o.Decisions,
			}
			if o.Status == ir.StatusOK {
				att.Program = o.Program
			}
			if _, err := st.WriteAttempt(ctx, att); err != nil {
				return err
			}
		}
		if o.Status != ir.StatusOK {
			return nil
		}
		report.Programs = append(report.Programs, Program{
			Seq:       o.Seq,
			Signature: o.Signature,
			Program:   banner.String() + o.Program,
		})
		lastDecisions = o.Decisions
		return nil
	}, driveOpts...)
	report.Stats = stats

	if cfg.MetricsOut != "" {
		if err := m.WriteTextfile(cfg.MetricsOut); err != nil {
			slog.Warn("metrics textfile not written", "path", cfg.MetricsOut, "error", err)
		}
	}
	if driveErr != nil {
		return fail(root, cmd, ExitFailure, "generation failed", driveErr)
	}

	if cfg.Delta.Output != "" && lastDecisions != nil {
		var buf bytes.Buffer
		if _, err := sequence.WriteDelta(&buf, lastDecisions); err != nil {
			return fail(root, cmd, ExitFailure, "write delta output", err)
		}
		if err := writeFileAtomic(cfg.Delta.Output, &buf); err != nil {
			return fail(root, cmd, ExitCommandError, "write delta output", err)
		}
	}

	return newOutput(root, cmd).Success(report, func(w io.Writer) error {
		return writeProgramsText(w, report)
	})
}

func writeProgramsText(w io.Writer, report Report) error {
	for _, p := range report.Programs {
		if _, err := fmt.Fprintf(w, "/* attempt %d signature %s */\n%s\n", p.Seq, p.Signature, p.Program); err != nil {
			return err
		}
	}
	return nil
}
