package sequence

import (
	"io"

	"github.com/roach88/choicegen/internal/ir"
)

// Linear records values only and renders them as "v0_v1_...".
type Linear struct {
	sep     byte
	entries entries
}

// NewLinear returns an empty Linear recorder using '_' as separator.
func NewLinear() *Linear {
	return &Linear{sep: LinearSep, entries: make(entries)}
}

func (l *Linear) Add(pos, value, bound int) { l.entries.add(pos, value, bound) }

func (l *Linear) Get(pos int) (ir.Decision, bool) {
	d, ok := l.entries[pos]
	return d, ok
}

func (l *Linear) Len() int { return len(l.entries) }

func (l *Linear) Clear() { clear(l.entries) }

func (l *Linear) Decisions() []ir.Decision { return l.entries.sorted() }

func (l *Linear) Signature() string { return l.entries.signature(l.sep) }

func (l *Linear) Sep() byte { return l.sep }

// WriteTo writes the signature on a single line.
func (l *Linear) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.Signature()+"\n")
	return int64(n), err
}
