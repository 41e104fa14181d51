package sequence

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/choicegen/internal/ir"
)

// Separator characters.
const (
	LinearSep = '_'
	DeltaSep  = ','
)

// Sequence is a position-keyed decision recorder.
type Sequence interface {
	// Add records value drawn out of [0, bound) at position pos,
	// replacing any earlier entry at that position.
	Add(pos, value, bound int)

	// Get returns the entry at pos.
	Get(pos int) (ir.Decision, bool)

	// Len returns the number of recorded positions.
	Len() int

	// Clear drops every recorded entry.
	Clear()

	// Decisions returns the recorded entries in ascending position order.
	Decisions() []ir.Decision

	// Signature renders the recorded values joined by the separator.
	Signature() string

	// WriteTo writes the recorder's persisted form.
	WriteTo(w io.Writer) (int64, error)

	// Sep returns the separator character.
	Sep() byte
}

// entries is the position-keyed storage shared by both recorders.
type entries map[int]ir.Decision

func (e entries) add(pos, value, bound int) {
	e[pos] = ir.Decision{Position: pos, Value: value, Bound: bound}
}

func (e entries) sorted() []ir.Decision {
	out := make([]ir.Decision, 0, len(e))
	for _, d := range e {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (e entries) signature(sep byte) string {
	var b strings.Builder
	for i, d := range e.sorted() {
		if i > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(strconv.Itoa(d.Value))
	}
	return b.String()
}

// Merge returns the union of the given recorders' entries in position order.
// Entries from later recorders win on position collisions.
func Merge(seqs ...Sequence) []ir.Decision {
	all := make(entries)
	for _, s := range seqs {
		if s == nil {
			continue
		}
		for _, d := range s.Decisions() {
			all[d.Position] = d
		}
	}
	return all.sorted()
}

// Values extracts the value column of a decision list.
func Values(ds []ir.Decision) []int {
	out := make([]int, len(ds))
	for i, d := range ds {
		out[i] = d.Value
	}
	return out
}
