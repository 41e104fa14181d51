package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
)

// retryScanFactor bounds blind redraws before the provider checks whether
// the filter admits any value at all.
const retryScanFactor = 64

// DefaultProvider draws decisions from a seeded pseudo-random source.
//
// Every decision is recorded at the provider's logical depth. A filtered
// draw is retried at the same depth, so retries never show up as separate
// decisions.
type DefaultProvider struct {
	src   Source
	depth *Cursor
	seq   sequence.Sequence
	trace strings.Builder
}

// NewDefaultProvider creates a random provider seeded with seed that records
// into seq. A nil seq gets a Linear recorder.
func NewDefaultProvider(seed uint64, seq sequence.Sequence) *DefaultProvider {
	if seq == nil {
		seq = sequence.NewLinear()
	}
	return &DefaultProvider{
		src:   NewSource(seed),
		depth: NewCursor(),
		seq:   seq,
	}
}

func (d *DefaultProvider) sealed() {}

// Kind implements Provider.
func (d *DefaultProvider) Kind() ir.Kind { return ir.KindDefault }

// ChooseUpto implements Provider.
func (d *DefaultProvider) ChooseUpto(at *Attempt, n int, f filter.Filter, label string) (int, error) {
	f = filter.Resolve(f, ir.KindDefault)
	local := d.depth.Current()
	d.depth.Next()

	v := draw(d.src, n)
	for tries := 1; filter.Rejects(f, v); tries++ {
		if tries%(retryScanFactor*n) == 0 && !admitsAny(f, n) {
			return 0, at.fail(newGenError(ErrCodeFilter, ir.KindDefault, local, n, "filter rejects every value below %d", n))
		}
		d.depth.Set(local + 1)
		v = draw(d.src, n)
	}

	d.note(label)
	d.seq.Add(local, v, n)
	return v, nil
}

// ChooseBool implements Provider. When the filter forbids one outcome the
// other is returned without consuming randomness, but it is still recorded
// as a two-valued decision.
func (d *DefaultProvider) ChooseBool(at *Attempt, p int, f filter.Filter, label string) (bool, error) {
	f = filter.Resolve(f, ir.KindDefault)
	local := d.depth.Current()
	d.depth.Next()

	rejectFalse := filter.Rejects(f, 0)
	rejectTrue := filter.Rejects(f, 1)
	var rv bool
	switch {
	case rejectFalse && rejectTrue:
		return false, at.fail(newGenError(ErrCodeFilter, ir.KindDefault, local, 2, "filter rejects both outcomes"))
	case rejectFalse:
		rv = true
	case rejectTrue:
		rv = false
	default:
		rv = d.drawBool(p)
	}

	d.note(label)
	d.seq.Add(local, boolValue(rv), 2)
	return rv, nil
}

// HexDigits implements Provider. Each digit is recorded as a decision out of 16.
func (d *DefaultProvider) HexDigits(_ *Attempt, n int) (string, error) {
	return d.recordDigits(n, hexAlphabet), nil
}

// DecDigits implements Provider. Each digit is recorded as a decision out of 10.
func (d *DefaultProvider) DecDigits(_ *Attempt, n int) (string, error) {
	return d.recordDigits(n, decAlphabet), nil
}

func (d *DefaultProvider) recordDigits(n int, alphabet string) string {
	var b strings.Builder
	for range n {
		x := draw(d.src, len(alphabet))
		b.WriteByte(alphabet[x])
		d.seq.Add(d.depth.Current(), x, len(alphabet))
		d.depth.Next()
	}
	return b.String()
}

// Sequence implements Provider.
func (d *DefaultProvider) Sequence() sequence.Sequence { return d.seq }

// PrefixedName implements Provider. Random names need no decoration.
func (d *DefaultProvider) PrefixedName(name string) string { return name }

// Trace implements Provider.
func (d *DefaultProvider) Trace() string { return d.trace.String() }

// Reset implements Provider. The random stream is not rewound, so the next
// attempt draws fresh values.
func (d *DefaultProvider) Reset() {
	d.depth.Set(0)
	d.seq.Clear()
	d.trace.Reset()
}

// Depth returns the logical depth of the next decision.
func (d *DefaultProvider) Depth() int { return d.depth.Current() }

// SetDepth moves the logical depth. The replay provider uses it when it
// hands the attempt over, so recorded positions continue where replay stopped.
func (d *DefaultProvider) SetDepth(depth int) { d.depth.Set(depth) }

func (d *DefaultProvider) note(label string) {
	if label != "" {
		fmt.Fprintf(&d.trace, "%s->", label)
	}
}

func (d *DefaultProvider) drawUpto(n int) int { return draw(d.src, n) }

func (d *DefaultProvider) drawBool(p int) bool { return draw(d.src, 100) < p }

func (d *DefaultProvider) drawDigits(n int, alphabet string) string {
	var b strings.Builder
	for range n {
		b.WriteByte(alphabet[draw(d.src, len(alphabet))])
	}
	return b.String()
}

func admitsAny(f filter.Filter, n int) bool {
	for v := range n {
		if !f.Reject(v) {
			return true
		}
	}
	return false
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
