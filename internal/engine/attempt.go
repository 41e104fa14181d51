package engine

import (
	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
)

// Attempt is the context of one generation attempt.
//
// It carries the attempt's error slot. The first GenError raised by a
// provider is stored here; from then on every decision on the attempt is a
// no-op returning that error, so generator code may keep calling and only
// needs to check the error where it is convenient. Only the driver starts a
// new Attempt, which is the only way the slot is cleared.
type Attempt struct {
	f   *Facade
	seq int64
	err error
}

// Seq returns the attempt's ordinal within the run, starting at 1.
func (a *Attempt) Seq() int64 { return a.seq }

// Err returns the error stored on the attempt, if any.
func (a *Attempt) Err() error { return a.err }

// Failed reports whether the attempt carries an error.
func (a *Attempt) Failed() bool { return a.err != nil }

// fail stores err unless the slot is already taken and returns the stored
// error.
func (a *Attempt) fail(err error) error {
	if a.err == nil {
		a.err = err
	}
	return a.err
}

// Facade returns the facade the attempt runs on.
func (a *Attempt) Facade() *Facade { return a.f }

// Kind returns the kind of the currently active provider.
func (a *Attempt) Kind() ir.Kind { return a.f.active.Kind() }

// ChooseUpto returns a value in [0, n) from the active provider.
// label names the decision in traces and may be empty.
func (a *Attempt) ChooseUpto(n int, f filter.Filter, label string) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	if n < 1 {
		return 0, a.fail(newGenError(ErrCodeInvalidBound, a.Kind(), -1, n, "choose upto %d: bound must be at least 1", n))
	}
	return a.f.active.ChooseUpto(a, n, f, label)
}

// ChooseBool returns true with probability p percent from the active provider.
func (a *Attempt) ChooseBool(p int, f filter.Filter, label string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	if p < 0 || p > 100 {
		return false, a.fail(newGenError(ErrCodeInvalidBound, a.Kind(), -1, p, "choose bool: probability %d outside 0..100", p))
	}
	return a.f.active.ChooseBool(a, p, f, label)
}

// HexDigits returns n hexadecimal digits from the active provider.
func (a *Attempt) HexDigits(n int) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.f.active.HexDigits(a, n)
}

// DecDigits returns n decimal digits from the active provider.
func (a *Attempt) DecDigits(n int) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.f.active.DecDigits(a, n)
}

// EagerBacktrack asks the active provider to abandon the branch when fewer
// than depthNeeded decisions remain. Non-exhaustive providers never prune.
func (a *Attempt) EagerBacktrack(depthNeeded int) bool {
	ex, ok := a.f.active.(Exhaustive)
	if !ok {
		return false
	}
	if a.err != nil {
		return true
	}
	return ex.EagerBacktrack(a, depthNeeded)
}

// PureUpto draws from the random provider without recording the decision,
// whichever provider is active.
func (a *Attempt) PureUpto(n int) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	if n < 1 {
		return 0, a.fail(newGenError(ErrCodeInvalidBound, ir.KindDefault, -1, n, "pure upto %d: bound must be at least 1", n))
	}
	var v int
	err := a.f.withDefault(func(d *DefaultProvider) { v = d.drawUpto(n) })
	return v, err
}

// PureBool is the unrecorded counterpart of ChooseBool.
func (a *Attempt) PureBool(p int) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	var v bool
	err := a.f.withDefault(func(d *DefaultProvider) { v = d.drawBool(p) })
	return v, err
}

// PureHexDigits returns n unrecorded hexadecimal digits.
func (a *Attempt) PureHexDigits(n int) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	var s string
	err := a.f.withDefault(func(d *DefaultProvider) { s = d.drawDigits(n, hexAlphabet) })
	return s, err
}

// PureDecDigits returns n unrecorded decimal digits.
func (a *Attempt) PureDecDigits(n int) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	var s string
	err := a.f.withDefault(func(d *DefaultProvider) { s = d.drawDigits(n, decAlphabet) })
	return s, err
}

// PrefixedName decorates name through the active provider.
func (a *Attempt) PrefixedName(name string) string {
	return a.f.active.PrefixedName(name)
}
