package engine

import (
	"math/rand/v2"

	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
)

// Provider is a source of bounded decisions.
//
// The set of providers is closed: DefaultProvider, DFSProvider and
// DeltaProvider. Callers needing exhaustive-only operations type-assert to
// Exhaustive instead of widening this interface.
type Provider interface {
	// Kind identifies the provider.
	Kind() ir.Kind

	// ChooseUpto returns a value in [0, n) not rejected by f.
	ChooseUpto(at *Attempt, n int, f filter.Filter, label string) (int, error)

	// ChooseBool returns true with probability p percent.
	ChooseBool(at *Attempt, p int, f filter.Filter, label string) (bool, error)

	// HexDigits returns n uppercase hexadecimal digits.
	HexDigits(at *Attempt, n int) (string, error)

	// DecDigits returns n decimal digits.
	DecDigits(at *Attempt, n int) (string, error)

	// Sequence returns the recorder holding this attempt's decisions.
	Sequence() sequence.Sequence

	// PrefixedName decorates a generated identifier.
	PrefixedName(name string) string

	// Trace returns the human-readable decision log of the attempt.
	Trace() string

	// Reset prepares the provider for the next attempt.
	Reset()

	sealed()
}

// Exhaustive is implemented by providers that enumerate a search tree.
type Exhaustive interface {
	Provider

	// EagerBacktrack abandons the current branch when fewer than
	// depthNeeded positions remain. It reports whether the branch was
	// abandoned; if so the attempt now carries a backtracking error.
	EagerBacktrack(at *Attempt, depthNeeded int) bool

	// Position is the position of the latest decision, -1 before any.
	Position() int

	// DecisionDepth is the deepest position whose value may still change.
	DecisionDepth() int

	// Done reports whether the whole tree has been enumerated.
	Done() bool
}

// Source is the pseudo-random stream behind random draws.
type Source interface {
	Uint64() uint64
}

// pcgStream separates the two PCG state words derived from one seed.
const pcgStream = 0x9e3779b97f4a7c15

// NewSource returns a deterministic PCG source for seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^pcgStream))
}

// draw returns a uniform-ish value in [0, n) as genrand() % n.
func draw(src Source, n int) int {
	return int(src.Uint64() % uint64(n))
}

const (
	hexAlphabet = "0123456789ABCDEF"
	decAlphabet = "0123456789"
)
