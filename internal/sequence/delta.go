package sequence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/choicegen/internal/ir"
)

// Delta records (value, bound) pairs and optionally carries a read-only
// input table consumed in order by Next.
type Delta struct {
	sep     byte
	entries entries

	input  []ir.Decision
	cursor int
}

// NewDelta returns an empty Delta recorder using ',' as separator.
func NewDelta() *Delta {
	return &Delta{sep: DeltaSep, entries: make(entries)}
}

// NewDeltaInput returns a Delta recorder whose input table is pairs.
func NewDeltaInput(pairs []ir.Decision) *Delta {
	d := NewDelta()
	d.input = make([]ir.Decision, len(pairs))
	for i, p := range pairs {
		d.input[i] = ir.Decision{Position: i, Value: p.Value, Bound: p.Bound}
	}
	return d
}

// LoadDelta reads a delta input file.
func LoadDelta(path string) (*Delta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open delta input: %w", err)
	}
	defer f.Close()

	pairs, err := ReadDelta(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewDeltaInput(pairs), nil
}

// ReadDelta parses "value,bound" lines. Blank lines are skipped; every other
// line must hold exactly two non-negative integers.
func ReadDelta(r io.Reader) ([]ir.Decision, error) {
	var pairs []ir.Decision
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		nums, err := ParseLine(strings.TrimRight(text, "\r\t "), DeltaSep)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(nums) != 2 {
			return nil, fmt.Errorf("line %d: expected value,bound pair, got %d numbers", line, len(nums))
		}
		if nums[0] >= nums[1] {
			return nil, fmt.Errorf("line %d: value %d out of range for bound %d", line, nums[0], nums[1])
		}
		pairs = append(pairs, ir.Decision{Position: len(pairs), Value: nums[0], Bound: nums[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// InputLen returns the number of pairs in the input table.
func (d *Delta) InputLen() int { return len(d.input) }

// Cursor returns the index of the next input pair.
func (d *Delta) Cursor() int { return d.cursor }

// Rewind moves the input cursor back to the first pair.
func (d *Delta) Rewind() { d.cursor = 0 }

// ErrExhausted is returned by Next when the input table has no more pairs.
var ErrExhausted = errors.New("delta input exhausted")

// BoundMismatchError reports an input pair recorded under a different bound.
type BoundMismatchError struct {
	Position int
	Want     int
	Got      int
}

func (e *BoundMismatchError) Error() string {
	return fmt.Sprintf("delta input position %d recorded bound %d, requested %d", e.Position, e.Got, e.Want)
}

// Next consumes the next input pair, checks that it was recorded under the
// same bound, copies it to the output entries and returns its value.
func (d *Delta) Next(bound int) (int, error) {
	if d.cursor >= len(d.input) {
		return 0, ErrExhausted
	}
	p := d.input[d.cursor]
	if p.Bound != bound {
		return 0, &BoundMismatchError{Position: d.cursor, Want: bound, Got: p.Bound}
	}
	d.entries.add(d.cursor, p.Value, p.Bound)
	d.cursor++
	return p.Value, nil
}

func (d *Delta) Add(pos, value, bound int) { d.entries.add(pos, value, bound) }

func (d *Delta) Get(pos int) (ir.Decision, bool) {
	e, ok := d.entries[pos]
	return e, ok
}

func (d *Delta) Len() int { return len(d.entries) }

// Clear drops the output entries. The input table is kept.
func (d *Delta) Clear() { clear(d.entries) }

func (d *Delta) Decisions() []ir.Decision { return d.entries.sorted() }

func (d *Delta) Signature() string { return d.entries.signature(LinearSep) }

func (d *Delta) Sep() byte { return d.sep }

// WriteTo writes one "value,bound" line per recorded entry.
func (d *Delta) WriteTo(w io.Writer) (int64, error) {
	return WriteDelta(w, d.Decisions())
}

// WriteDelta writes decisions in the delta line format.
func WriteDelta(w io.Writer, ds []ir.Decision) (int64, error) {
	var total int64
	for _, e := range ds {
		n, err := fmt.Fprintf(w, "%d%c%d\n", e.Value, DeltaSep, e.Bound)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
