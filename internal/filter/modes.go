package filter

import "github.com/roach88/choicegen/internal/ir"

// Modes is the set of provider kinds a scoped filter is enabled for.
type Modes uint8

const (
	ModeDefault Modes = 1 << iota
	ModeDFS
	ModeDelta

	AllModes = ModeDefault | ModeDFS | ModeDelta
)

// ModesOf maps a provider kind to its mode bit.
func ModesOf(k ir.Kind) Modes {
	switch k {
	case ir.KindDefault:
		return ModeDefault
	case ir.KindDFS:
		return ModeDFS
	case ir.KindDelta:
		return ModeDelta
	}
	return 0
}

// Scoped is a filter that only applies under some provider kinds. Outside
// them it accepts everything.
type Scoped struct {
	Filter
	Enabled Modes
}

// ForModes wraps f so it only applies under the given modes.
func ForModes(f Filter, enabled Modes) Scoped {
	return Scoped{Filter: f, Enabled: enabled}
}

// Applies reports whether f should be consulted under provider kind k.
// Unscoped filters apply everywhere.
func Applies(f Filter, k ir.Kind) bool {
	if f == nil {
		return false
	}
	if s, ok := f.(Scoped); ok {
		return s.Enabled&ModesOf(k) != 0
	}
	return true
}

// Resolve returns the part of f that applies under k, or nil, so callers
// can use the result with Rejects directly. Scoped members of a combined
// filter are resolved one by one.
func Resolve(f Filter, k ir.Kind) Filter {
	if a, ok := f.(anyOf); ok {
		live := make([]Filter, 0, len(a))
		for _, m := range a {
			live = append(live, Resolve(m, k))
		}
		return Any(live...)
	}
	if !Applies(f, k) {
		return nil
	}
	return f
}
