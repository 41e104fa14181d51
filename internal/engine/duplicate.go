package engine

import "github.com/roach88/choicegen/internal/ir"

// DuplicateDetector remembers the signatures emitted by a run.
//
// Exhaustive enumeration emits every decision sequence at most once. A
// repeat means the grammar's decisions depend on something other than
// earlier decisions (for example a pure random draw steering a recorded
// choice), and the repeated program is skipped.
type DuplicateDetector struct {
	seen map[string]int64 // signature hash -> attempt seq of first emission
}

// NewDuplicateDetector creates an empty detector.
func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{seen: make(map[string]int64)}
}

// Seen reports whether signature was already recorded and, if so, the
// attempt that first emitted it.
func (d *DuplicateDetector) Seen(signature string) (int64, bool) {
	seq, ok := d.seen[ir.SignatureHash(signature)]
	return seq, ok
}

// Record marks signature as emitted by attempt seq. The first emission wins.
func (d *DuplicateDetector) Record(signature string, seq int64) {
	h := ir.SignatureHash(signature)
	if _, ok := d.seen[h]; !ok {
		d.seen[h] = seq
	}
}

// Size returns the number of distinct signatures recorded.
func (d *DuplicateDetector) Size() int {
	return len(d.seen)
}
