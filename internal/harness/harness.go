package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/choicegen/internal/engine"
	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
	"github.com/roach88/choicegen/internal/store"
	"github.com/roach88/choicegen/internal/testutil"
)

// scenarioRunID names every scenario run in its private store.
const scenarioRunID = "scenario-run"

// guardKind is the production kind depth guard steps report.
const guardKind = "guard"

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. Every
// attempt, discarded or not, is written to the run log; the result's
// signatures are read back from it.
//
// Execution flow:
//  1. Build and select the facade for the scenario's mode
//  2. Create a fresh in-memory store and record the run header
//  3. Drive the script, writing every attempt
//  4. Read back the emitted signatures
//  5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with an explicit engine logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	ctx := context.Background()

	f, err := newFacade(scenario, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	runID := testutil.NewFixedRunID(scenarioRunID).Generate()
	if err := st.WriteRun(ctx, scenarioRun(runID, scenario)); err != nil {
		return nil, fmt.Errorf("failed to write run: %w", err)
	}

	gen, err := scriptGenerator(scenario.Script)
	if err != nil {
		return nil, err
	}

	opts := []engine.DriveOption{engine.WithRunID(runID), engine.WithFailedAttempts()}
	if scenario.Programs > 0 {
		opts = append(opts, engine.WithCount(scenario.Programs))
	}

	stats, err := f.Drive(ctx, gen, func(out engine.Outcome) error {
		att := ir.Attempt{
			RunID:     runID,
			Seq:       out.Seq,
			Status:    out.Status,
			Signature: out.Signature,
			Decisions: out.Decisions,
		}
		if out.Status == ir.StatusOK {
			att.Program = out.Program
		}
		_, err := st.WriteAttempt(ctx, att)
		return err
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	signatures, err := st.EmittedSignatures(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read signatures: %w", err)
	}

	result := NewResult()
	result.Signatures = signatures
	result.Stats = stats
	for _, msg := range EvaluateAssertions(scenario.Assertions, signatures) {
		result.AddError(msg)
	}
	return result, nil
}

func newFacade(s *Scenario, logger *slog.Logger) (*engine.Facade, error) {
	opts := []engine.Option{
		engine.WithMaxDepth(s.MaxDepth),
		engine.WithLogger(logger),
	}

	if s.DebugSequence != "" {
		debug, err := sequence.ParseDebug(s.DebugSequence)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		opts = append(opts, engine.WithDebugSequence(debug))
	}

	if s.Mode == ir.ModeDelta {
		pairs, err := sequence.ReadDelta(strings.NewReader(s.Input))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: delta input: %w", s.Name, err)
		}
		opts = append(opts, engine.WithDeltaInput(sequence.NewDeltaInput(pairs)))
		if s.NoReduction {
			opts = append(opts, engine.WithNoDeltaReduction())
		}
	}

	f := engine.New(opts...)
	if err := f.Select(s.Mode.Kind(), s.Seed); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return f, nil
}

func scenarioRun(runID string, s *Scenario) ir.Run {
	cfg := map[string]any{
		"scenario":  s.Name,
		"mode":      s.Mode,
		"seed":      strconv.FormatUint(s.Seed, 10),
		"max_depth": s.MaxDepth,
		"programs":  s.Programs,
	}
	return ir.Run{
		ID:            runID,
		Mode:          s.Mode,
		Seed:          int64(s.Seed),
		MaxDepth:      s.MaxDepth,
		Config:        cfg,
		ConfigHash:    ir.MustRunConfigHash(cfg),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
		Seq:           1,
	}
}

// scriptGenerator turns a script into a generator. The program of an
// attempt is its signature.
func scriptGenerator(steps []Step) (engine.Generator, error) {
	filters := make([]filter.Filter, len(steps))
	for i, step := range steps {
		if len(step.Exclude) == 0 {
			continue
		}
		modes, err := parseModes(step.Modes)
		if err != nil {
			return nil, fmt.Errorf("script[%d]: %w", i, err)
		}
		var f filter.Filter = filter.Exclude(step.Exclude)
		if modes != filter.AllModes {
			f = filter.ForModes(f, modes)
		}
		filters[i] = f
	}

	guard := engine.NewDepthGuard(func(_ string, need int) int { return need })

	return func(at *engine.Attempt) (string, error) {
		for i, step := range steps {
			var err error
			switch {
			case step.Guard > 0:
				if guard.Check(at, guardKind, step.Guard) == engine.Prune {
					return "", at.Err()
				}
			case step.Bool != nil:
				_, err = at.ChooseBool(*step.Bool, filters[i], step.Label)
			default:
				_, err = at.ChooseUpto(step.Upto, filters[i], step.Label)
			}
			if err != nil {
				return "", err
			}
		}
		return at.Facade().Signature(), nil
	}, nil
}
