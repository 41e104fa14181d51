package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
)

// stateTag marks whether a search state holds a live value.
type stateTag uint8

const (
	stateFresh stateTag = iota
	stateActive
)

// searchState is the enumeration cursor of one decision position.
type searchState struct {
	tag   stateTag
	value int
	bound int
}

// DFSProvider enumerates every decision sequence depth-first.
//
// Each attempt replays the decisions above the decision depth, advances the
// decision at the decision depth to its next admissible value, and explores
// fresh positions below it starting from 0. When a position runs out of
// values its subtree is cleared, the decision depth moves up one level and
// the attempt fails with a backtracking error. Enumeration is complete when
// the decision depth drops below the root.
//
// Positions at or beyond maxDepth are never explored, so the tree is finite.
type DFSProvider struct {
	maxDepth int
	states   []searchState
	pos      *Cursor
	depth    int
	done     bool

	debug []int

	src    Source
	seq    *sequence.Linear
	trace  strings.Builder
	logger *slog.Logger
}

// NewDFSProvider creates an exhaustive provider bounded by maxDepth.
// A non-empty debug sequence makes the provider replay that sequence by
// position instead of searching.
func NewDFSProvider(seed uint64, maxDepth int, debug []int, logger *slog.Logger) *DFSProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &DFSProvider{
		maxDepth: maxDepth,
		states:   make([]searchState, maxDepth),
		pos:      NewCursorAt(-1),
		depth:    -1,
		debug:    debug,
		src:      NewSource(seed),
		seq:      sequence.NewLinear(),
		logger:   logger,
	}
}

func (p *DFSProvider) sealed() {}

// Kind implements Provider.
func (p *DFSProvider) Kind() ir.Kind { return ir.KindDFS }

// ChooseUpto implements Provider.
func (p *DFSProvider) ChooseUpto(at *Attempt, n int, f filter.Filter, label string) (int, error) {
	return p.choose(at, n, filter.Resolve(f, ir.KindDFS), nil, label)
}

// ChooseBool implements Provider. Probabilities 0 and 100 restrict the
// branch to the single reachable outcome; any other probability explores both.
func (p *DFSProvider) ChooseBool(at *Attempt, prob int, f filter.Filter, label string) (bool, error) {
	var invalid filter.Exclude
	switch prob {
	case 100:
		invalid = filter.Exclude{0}
	case 0:
		invalid = filter.Exclude{1}
	}
	v, err := p.choose(at, 2, filter.Resolve(f, ir.KindDFS), invalid, label)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

func (p *DFSProvider) choose(at *Attempt, n int, f filter.Filter, invalid filter.Exclude, label string) (int, error) {
	if err := at.Err(); err != nil {
		return 0, err
	}

	rejects := func(v int) bool {
		return filter.Rejects(f, v) || invalid.Reject(v)
	}

	pos := p.pos.Next()
	if p.debug != nil {
		return p.replayDebug(at, pos, n, rejects, label)
	}

	if pos >= p.maxDepth || p.depth >= p.maxDepth {
		return 0, at.fail(NewExceedMaxDepthError(pos, p.maxDepth))
	}

	st := &p.states[pos]
	st.bound = n

	switch {
	case pos < p.depth && st.tag == stateActive:
		// Above the decision depth: replay.
		if st.value >= n {
			return 0, at.fail(newGenError(ErrCodeInconsistentReplay, ir.KindDFS, pos, n,
				"stored value %d no longer below bound %d", st.value, n))
		}
		if rejects(st.value) {
			return 0, at.fail(newGenError(ErrCodeInconsistentReplay, ir.KindDFS, pos, n,
				"stored value %d now rejected by filter", st.value))
		}
		return p.commit(pos, st.value, n, label), nil

	case st.tag == stateActive:
		// At the decision depth: advance to the next admissible value.
		v := st.value + 1
		for v < n && rejects(v) {
			v++
		}
		st.value = v
		if v >= n {
			return 0, p.exhaust(at, pos)
		}
		return p.commit(pos, v, n, label), nil

	default:
		// Below the decision depth: first visit.
		st.tag = stateActive
		v := 0
		for v < n && rejects(v) {
			v++
		}
		st.value = v
		p.depth = pos
		if v >= n {
			return 0, p.exhaust(at, pos)
		}
		return p.commit(pos, v, n, label), nil
	}
}

// exhaust clears the subtree rooted at pos, moves the decision depth up one
// level and fails the attempt.
func (p *DFSProvider) exhaust(at *Attempt, pos int) error {
	p.resetFrom(pos)
	p.depth--
	if p.depth < 0 {
		p.done = true
	}
	p.logger.Debug("subtree exhausted", "pos", pos, "decision_depth", p.depth, "done", p.done)
	return at.fail(NewBacktrackingError(pos))
}

// replayDebug takes the value at pos from the debug sequence verbatim. A
// value the filter rejects is still used so the sequence reproduces as
// written.
func (p *DFSProvider) replayDebug(at *Attempt, pos, n int, rejects func(int) bool, label string) (int, error) {
	if pos >= len(p.debug) {
		p.done = true
		return 0, at.fail(newGenError(ErrCodeExceedMaxDepth, ir.KindDFS, pos, n,
			"debug sequence of length %d exhausted", len(p.debug)))
	}
	v := p.debug[pos]
	if rejects(v) {
		p.logger.Debug("debug sequence value rejected by filter", "pos", pos, "value", v, "bound", n, "label", label)
	}
	if pos >= len(p.debug)-1 {
		p.done = true
	}
	return p.commit(pos, v, n, label), nil
}

func (p *DFSProvider) commit(pos, v, n int, label string) int {
	p.seq.Add(pos, v, n)
	if label == "" {
		label = "..."
	}
	fmt.Fprintf(&p.trace, "%d(%s, pos = %d, decision_depth = %d)->", v, label, pos, p.depth)
	return v
}

func (p *DFSProvider) resetFrom(pos int) {
	for i := max(pos, 0); i < p.maxDepth; i++ {
		p.states[i].tag = stateFresh
	}
}

// EagerBacktrack implements Exhaustive.
//
// The branch is abandoned only past the root: with no decision or a single
// decision made, the guard never prunes.
func (p *DFSProvider) EagerBacktrack(at *Attempt, depthNeeded int) bool {
	pos := p.pos.Current()
	if pos <= 0 {
		return false
	}
	if p.maxDepth-pos >= depthNeeded {
		return false
	}
	if pos > p.depth {
		at.fail(NewBacktrackingError(pos))
		return true
	}

	p.depth = pos
	p.resetFrom(pos + 1)
	p.logger.Debug("eager backtrack", "pos", pos, "depth_needed", depthNeeded)
	at.fail(NewBacktrackingError(pos))
	return true
}

// HexDigits implements Provider. Digits are drawn without recording so they
// do not widen the search tree.
func (p *DFSProvider) HexDigits(_ *Attempt, n int) (string, error) {
	return p.drawDigits(n, hexAlphabet), nil
}

// DecDigits implements Provider.
func (p *DFSProvider) DecDigits(_ *Attempt, n int) (string, error) {
	return p.drawDigits(n, decAlphabet), nil
}

func (p *DFSProvider) drawDigits(n int, alphabet string) string {
	var b strings.Builder
	for range n {
		b.WriteByte(alphabet[draw(p.src, len(alphabet))])
	}
	return b.String()
}

// Sequence implements Provider.
func (p *DFSProvider) Sequence() sequence.Sequence { return p.seq }

// PrefixedName implements Provider. Names carry the decision path so that
// identifiers from different enumerated programs never collide.
func (p *DFSProvider) PrefixedName(name string) string {
	return "p_" + p.seq.Signature() + string(rune(sequence.LinearSep)) + name
}

// Trace implements Provider.
func (p *DFSProvider) Trace() string { return p.trace.String() }

// Reset implements Provider. The search states survive; they are what the
// next attempt continues from.
func (p *DFSProvider) Reset() {
	p.pos.Set(-1)
	p.trace.Reset()
	p.seq.Clear()
}

// Position implements Exhaustive.
func (p *DFSProvider) Position() int { return p.pos.Current() }

// DecisionDepth implements Exhaustive.
func (p *DFSProvider) DecisionDepth() int { return p.depth }

// Done implements Exhaustive.
func (p *DFSProvider) Done() bool { return p.done }

// MaxDepth returns the exploration limit.
func (p *DFSProvider) MaxDepth() int { return p.maxDepth }
