package engine

// Verdict is the answer of a depth guard.
type Verdict int

const (
	// Proceed means the production fits in the remaining depth budget.
	Proceed Verdict = iota

	// Prune means the branch was abandoned; the attempt carries a
	// backtracking error and the caller should unwind.
	Prune
)

func (v Verdict) String() string {
	if v == Prune {
		return "prune"
	}
	return "proceed"
}

// MinDepthFunc returns the minimum number of decisions needed to complete a
// production of the given kind. The flag carries production-specific
// context, such as whether a statement must yield a value. Unknown kinds
// should return 0.
type MinDepthFunc func(kind string, flag int) int

// DepthGuard asks, before the generator commits to a production, whether
// the exhaustive search has enough depth left to finish it. The minimum
// depth of each production comes from the grammar; the guard only compares
// it against the remaining budget.
//
// Outside exhaustive runs the guard always proceeds.
type DepthGuard struct {
	minDepth MinDepthFunc
}

// NewDepthGuard creates a guard backed by minDepth.
func NewDepthGuard(minDepth MinDepthFunc) *DepthGuard {
	return &DepthGuard{minDepth: minDepth}
}

// Check returns Prune when the active provider is exhaustive and fewer
// decisions remain than a production of kind needs.
func (g *DepthGuard) Check(at *Attempt, kind string, flag int) Verdict {
	if _, ok := at.f.active.(Exhaustive); !ok {
		return Proceed
	}
	need := 0
	if g.minDepth != nil {
		need = g.minDepth(kind, flag)
	}
	if at.EagerBacktrack(need) {
		return Prune
	}
	return Proceed
}
