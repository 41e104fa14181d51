package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/choicegen/internal/ir"
)

// GenError is a decision-level failure raised by a choice provider.
//
// Once a GenError is stored on an Attempt, every later decision on that
// attempt returns the same error without side effects. The driver inspects
// the code to decide whether the attempt is simply discarded or the whole
// run must stop.
type GenError struct {
	// Code identifies the error category.
	Code GenErrorCode

	// Message is a human-readable description.
	Message string

	// Kind is the provider that raised the error.
	Kind ir.Kind

	// Position is the logical decision position, or -1 when unknown.
	Position int

	// Bound is the requested bound, or 0 when not applicable.
	Bound int
}

// GenErrorCode categorizes decision errors.
type GenErrorCode string

const (
	// ErrCodeBacktracking means the exhaustive provider exhausted a subtree
	// or pruned it eagerly. The attempt is discarded.
	ErrCodeBacktracking GenErrorCode = "BACKTRACKING"

	// ErrCodeExceedMaxDepth means a decision was requested at or beyond the
	// exhaustive depth limit. The attempt is discarded.
	ErrCodeExceedMaxDepth GenErrorCode = "EXCEED_MAX_DEPTH"

	// ErrCodeFilter means a replayed value was rejected by the caller's
	// filter, or every candidate value was rejected. Raised by the replay
	// provider it aborts the run.
	ErrCodeFilter GenErrorCode = "FILTER_ERROR"

	// ErrCodeInvalidDelta means the replay input does not match the
	// requested decision (bound mismatch or input exhausted).
	ErrCodeInvalidDelta GenErrorCode = "INVALID_SIMPLE_DELTA_SEQUENCE"

	// ErrCodeInvalidBound means a caller asked for an empty range or an
	// out-of-range probability.
	ErrCodeInvalidBound GenErrorCode = "INVALID_BOUND"

	// ErrCodeInconsistentReplay means a revisited decision was requested
	// with a bound that no longer admits its stored value. The grammar's
	// decision shape is not a pure function of earlier decisions.
	ErrCodeInconsistentReplay GenErrorCode = "INCONSISTENT_REPLAY"
)

// Error implements the error interface.
func (e *GenError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s: %s (provider=%s, pos=%d)", e.Code, e.Message, e.Kind, e.Position)
	}
	return fmt.Sprintf("%s: %s (provider=%s)", e.Code, e.Message, e.Kind)
}

// Recoverable reports whether the driver may discard the attempt and
// continue with the next one. A filter rejection of a replayed value is
// fatal: the replay input itself is unusable.
func (e *GenError) Recoverable() bool {
	switch e.Code {
	case ErrCodeBacktracking, ErrCodeExceedMaxDepth:
		return true
	case ErrCodeFilter:
		return e.Kind != ir.KindDelta
	}
	return false
}

// Status maps the error to a persisted attempt status.
func (e *GenError) Status() ir.AttemptStatus {
	switch e.Code {
	case ErrCodeBacktracking:
		return ir.StatusBacktrack
	case ErrCodeExceedMaxDepth:
		return ir.StatusExceedDepth
	case ErrCodeFilter:
		return ir.StatusFilter
	case ErrCodeInvalidDelta:
		return ir.StatusInvalidDelta
	}
	return ir.StatusFailed
}

func newGenError(code GenErrorCode, kind ir.Kind, pos, bound int, format string, args ...any) *GenError {
	return &GenError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Position: pos,
		Bound:    bound,
	}
}

// NewBacktrackingError creates a GenError for an exhausted or pruned subtree.
func NewBacktrackingError(pos int) *GenError {
	return newGenError(ErrCodeBacktracking, ir.KindDFS, pos, 0, "subtree exhausted")
}

// NewExceedMaxDepthError creates a GenError for a decision past the depth limit.
func NewExceedMaxDepthError(pos, maxDepth int) *GenError {
	return newGenError(ErrCodeExceedMaxDepth, ir.KindDFS, pos, 0, "decision depth limit %d reached", maxDepth)
}

func asGenError(err error) (*GenError, bool) {
	var ge *GenError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// IsGenError returns true if err wraps a GenError.
func IsGenError(err error) bool {
	_, ok := asGenError(err)
	return ok
}

// IsBacktracking returns true if err is a backtracking error.
// Uses errors.As to handle wrapped errors.
func IsBacktracking(err error) bool {
	ge, ok := asGenError(err)
	return ok && ge.Code == ErrCodeBacktracking
}

// IsExceedMaxDepth returns true if err is a depth-limit error.
func IsExceedMaxDepth(err error) bool {
	ge, ok := asGenError(err)
	return ok && ge.Code == ErrCodeExceedMaxDepth
}

// IsFilterError returns true if err is a filter rejection error.
func IsFilterError(err error) bool {
	ge, ok := asGenError(err)
	return ok && ge.Code == ErrCodeFilter
}

// IsInvalidDelta returns true if err is a replay input mismatch.
func IsInvalidDelta(err error) bool {
	ge, ok := asGenError(err)
	return ok && ge.Code == ErrCodeInvalidDelta
}

// IsRecoverable returns true if err is a GenError the driver can discard.
func IsRecoverable(err error) bool {
	ge, ok := asGenError(err)
	return ok && ge.Recoverable()
}

// StatusOf maps an attempt's final error to its persisted status.
func StatusOf(err error) ir.AttemptStatus {
	if err == nil {
		return ir.StatusOK
	}
	if ge, ok := asGenError(err); ok {
		return ge.Status()
	}
	return ir.StatusFailed
}

// ConfigError reports a facade misuse detected before any decision is made,
// such as selecting the replay provider without an input sequence.
type ConfigError struct {
	Kind    ir.Kind
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configure %s provider: %s", e.Kind, e.Message)
}

// IsConfigError returns true if err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
