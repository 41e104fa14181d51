package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/choicegen/internal/ir"
)

// Generator builds one program out of the decisions of an attempt.
//
// A generator returns as soon as a decision fails; returning the attempt's
// error or a partial program is equally fine, the driver reads the
// attempt's error slot either way.
type Generator func(at *Attempt) (string, error)

// Outcome is the result of one attempt, handed to the emit callback.
type Outcome struct {
	Seq       int64
	Status    ir.AttemptStatus
	Program   string
	Signature string
	Decisions []ir.Decision
	Err       error
}

// Stats summarizes a run.
type Stats struct {
	Attempts      int `json:"attempts"`
	Emitted       int `json:"emitted"`
	Backtracks    int `json:"backtracks"`
	DepthExceeded int `json:"depth_exceeded"`
	Filtered      int `json:"filtered"`
	Duplicates    int `json:"duplicates"`
}

// DriveOptions configures Drive.
type DriveOptions struct {
	// RunID labels quota errors and log lines.
	RunID string

	// Count is the number of programs to emit. Random runs default to 1;
	// for exhaustive runs 0 means "until the tree is done".
	Count int

	// MaxAttempts bounds the attempts of the run. Default: DefaultMaxAttempts.
	MaxAttempts int

	// EmitFailures also passes discarded attempts to the emit callback.
	EmitFailures bool
}

// DriveOption configures a Drive call.
type DriveOption func(*DriveOptions)

// WithRunID labels the run.
func WithRunID(id string) DriveOption {
	return func(o *DriveOptions) { o.RunID = id }
}

// WithCount sets the number of programs to emit.
func WithCount(n int) DriveOption {
	return func(o *DriveOptions) { o.Count = n }
}

// WithAttemptLimit sets the attempt quota.
func WithAttemptLimit(n int) DriveOption {
	return func(o *DriveOptions) { o.MaxAttempts = n }
}

// WithFailedAttempts makes Drive emit discarded attempts too.
func WithFailedAttempts() DriveOption {
	return func(o *DriveOptions) { o.EmitFailures = true }
}

// Drive runs the attempt loop for the selected provider:
//
//   - random runs attempt until Count programs were emitted
//   - exhaustive runs attempt until the tree is enumerated (or Count
//     programs were emitted, when Count > 0)
//   - replay runs make exactly one attempt
//
// Each attempt gets a fresh error slot; successful attempts are emitted and
// every provider is reset before the next one. Recoverable decision errors
// discard the attempt. Any other error stops the run and is returned.
func (f *Facade) Drive(ctx context.Context, gen Generator, emit func(Outcome) error, opts ...DriveOption) (Stats, error) {
	var stats Stats
	if f.active == nil {
		return stats, &ConfigError{Kind: "", Message: "drive before select"}
	}

	o := DriveOptions{MaxAttempts: DefaultMaxAttempts}
	if f.primary == ir.KindDefault {
		o.Count = 1
	}
	for _, opt := range opts {
		opt(&o)
	}

	quota := NewAttemptQuota(o.MaxAttempts)
	dups := NewDuplicateDetector()
	log := f.logger.With("run_id", o.RunID, "provider", f.primary)

	for !f.finished(o, stats) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := quota.Check(o.RunID); err != nil {
			return stats, err
		}
		stats.Attempts++

		at := f.Begin()
		program, err := gen(at)
		if at.Err() != nil {
			err = at.Err()
		}

		out := Outcome{
			Seq:       at.Seq(),
			Status:    StatusOf(err),
			Program:   program,
			Signature: f.Signature(),
			Decisions: f.Decisions(),
			Err:       err,
		}
		f.observer.ObserveAttempt(f.primary, out.Status, len(out.Decisions))

		switch {
		case err == nil:
			if f.primary == ir.KindDFS {
				if first, dup := dups.Seen(out.Signature); dup {
					stats.Duplicates++
					log.Warn("duplicate signature skipped", "attempt", out.Seq, "first", first, "signature", out.Signature)
					break
				}
				dups.Record(out.Signature, out.Seq)
			}
			stats.Emitted++
			if err := emit(out); err != nil {
				return stats, fmt.Errorf("emit attempt %d: %w", out.Seq, err)
			}

		case IsRecoverable(err):
			countFailure(&stats, err)
			log.Debug("attempt discarded", "attempt", out.Seq, "status", out.Status, "error", err)
			if o.EmitFailures {
				if err := emit(out); err != nil {
					return stats, fmt.Errorf("emit attempt %d: %w", out.Seq, err)
				}
			}

		default:
			fatal := fmt.Errorf("attempt %d: %w", out.Seq, err)
			if o.EmitFailures {
				if emitErr := emit(out); emitErr != nil {
					fatal = errors.Join(fatal, fmt.Errorf("emit attempt %d: %w", out.Seq, emitErr))
				}
			}
			f.ResetAttempt()
			log.Error("run aborted", "attempt", out.Seq, "status", out.Status, "error", err)
			return stats, fatal
		}

		f.ResetAttempt()
	}

	log.Info("run finished",
		"attempts", stats.Attempts,
		"emitted", stats.Emitted,
		"backtracks", stats.Backtracks,
		"duplicates", stats.Duplicates,
	)
	return stats, nil
}

func (f *Facade) finished(o DriveOptions, stats Stats) bool {
	switch f.primary {
	case ir.KindDFS:
		return f.Done() || (o.Count > 0 && stats.Emitted >= o.Count)
	case ir.KindDelta:
		return stats.Attempts > 0
	}
	return stats.Emitted >= o.Count
}

func countFailure(stats *Stats, err error) {
	switch {
	case IsBacktracking(err):
		stats.Backtracks++
	case IsExceedMaxDepth(err):
		stats.DepthExceeded++
	case IsFilterError(err):
		stats.Filtered++
	}
}
