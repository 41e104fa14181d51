package engine

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
)

// DeltaProvider replays a recorded value/bound sequence.
//
// Decisions are served from the input in order until the replay depth
// reaches the switch point, a position drawn once at construction. At that
// point the provider hands the attempt over to the random provider, which
// continues at the same depth. The program produced is therefore a random
// variation of the recorded one that shares its first switch-point
// decisions.
type DeltaProvider struct {
	in          *sequence.Delta
	depth       *Cursor
	filterDepth int
	switchPoint int
	noReduction bool

	// handoff is installed by the facade; it activates the random provider
	// at the given depth.
	handoff func(depth int)
}

// NewDeltaProvider creates a replay provider over in. switchPoint must be in
// [0, in.InputLen()).
func NewDeltaProvider(in *sequence.Delta, switchPoint int, noReduction bool) *DeltaProvider {
	return &DeltaProvider{
		in:          in,
		depth:       NewCursor(),
		switchPoint: switchPoint,
		noReduction: noReduction,
	}
}

func (d *DeltaProvider) sealed() {}

// Kind implements Provider.
func (d *DeltaProvider) Kind() ir.Kind { return ir.KindDelta }

// ChooseUpto implements Provider.
func (d *DeltaProvider) ChooseUpto(at *Attempt, n int, f filter.Filter, _ string) (int, error) {
	return d.choose(at, n, filter.Resolve(f, ir.KindDelta))
}

// ChooseBool implements Provider. The probability is irrelevant on replay.
func (d *DeltaProvider) ChooseBool(at *Attempt, _ int, f filter.Filter, _ string) (bool, error) {
	v, err := d.choose(at, 2, filter.Resolve(f, ir.KindDelta))
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

func (d *DeltaProvider) choose(at *Attempt, n int, f filter.Filter) (int, error) {
	pos := d.depth.Current()
	v, err := d.in.Next(n)
	d.depth.Next()
	if err != nil {
		return 0, at.fail(d.invalid(pos, n, err))
	}

	if f != nil {
		d.filterDepth++
		if f.Reject(v) {
			return 0, at.fail(newGenError(ErrCodeFilter, ir.KindDelta, pos, n,
				"replayed value %d rejected by filter", v))
		}
		d.filterDepth--
	}

	d.maybeHandoff()
	return v, nil
}

func (d *DeltaProvider) invalid(pos, n int, err error) *GenError {
	var mismatch *sequence.BoundMismatchError
	switch {
	case errors.As(err, &mismatch):
		return newGenError(ErrCodeInvalidDelta, ir.KindDelta, pos, n,
			"recorded bound %d, requested %d", mismatch.Got, mismatch.Want)
	case errors.Is(err, sequence.ErrExhausted):
		return newGenError(ErrCodeInvalidDelta, ir.KindDelta, pos, n,
			"input of length %d exhausted", d.in.InputLen())
	}
	return newGenError(ErrCodeInvalidDelta, ir.KindDelta, pos, n, "%v", err)
}

// maybeHandoff switches to the random provider once the replay depth has
// reached the switch point. Reduction can be disabled, and the switch never
// happens from inside a filter evaluation.
func (d *DeltaProvider) maybeHandoff() {
	if d.noReduction || d.depth.Current() < d.switchPoint || d.filterDepth != 0 || d.handoff == nil {
		return
	}
	d.handoff(d.depth.Current())
}

// HexDigits implements Provider. Digits consume the input like any decision.
func (d *DeltaProvider) HexDigits(at *Attempt, n int) (string, error) {
	return d.digits(at, n, hexAlphabet)
}

// DecDigits implements Provider.
func (d *DeltaProvider) DecDigits(at *Attempt, n int) (string, error) {
	return d.digits(at, n, decAlphabet)
}

func (d *DeltaProvider) digits(at *Attempt, n int, alphabet string) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		// A hand-off can happen mid-string; the rest comes from the random
		// provider at the continued depth.
		if at.f.active.Kind() != ir.KindDelta {
			rest, err := continueDigits(at, n-i, alphabet)
			if err != nil {
				return "", err
			}
			b.WriteString(rest)
			break
		}
		x, err := d.choose(at, len(alphabet), nil)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[x])
	}
	return b.String(), nil
}

func continueDigits(at *Attempt, n int, alphabet string) (string, error) {
	if alphabet == hexAlphabet {
		return at.f.active.HexDigits(at, n)
	}
	return at.f.active.DecDigits(at, n)
}

// Sequence implements Provider. It holds the replayed prefix.
func (d *DeltaProvider) Sequence() sequence.Sequence { return d.in }

// PrefixedName implements Provider.
func (d *DeltaProvider) PrefixedName(name string) string { return name }

// Trace implements Provider.
func (d *DeltaProvider) Trace() string { return "" }

// Reset implements Provider. The switch point is kept.
func (d *DeltaProvider) Reset() {
	d.in.Rewind()
	d.in.Clear()
	d.depth.Set(0)
	d.filterDepth = 0
}

// SwitchPoint returns the replay depth at which the hand-off happens.
func (d *DeltaProvider) SwitchPoint() int { return d.switchPoint }

// Depth returns the replay depth.
func (d *DeltaProvider) Depth() int { return d.depth.Current() }

// WriteStatistics writes the reduction banner placed at the top of a
// reduced program.
func (d *DeltaProvider) WriteStatistics(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"/*\n** This program was reduced by the simple delta reduction algorithm\n"+
			"** at a random point %d with the sequence of length %d.\n*/\n",
		d.switchPoint, d.in.InputLen())
	return err
}
