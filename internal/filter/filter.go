// Package filter provides the predicates that reject candidate decision
// values before a provider commits to them.
//
// A filter answers one question: should value v be rejected? Providers
// consult the filter on every candidate; the Default provider redraws, the
// DFS provider skips to the next value, and the delta provider fails the
// attempt.
package filter

import "slices"

// Filter rejects candidate values.
type Filter interface {
	Reject(v int) bool
}

// Func adapts a plain function to the Filter interface.
type Func func(v int) bool

// Reject implements Filter.
func (f Func) Reject(v int) bool { return f(v) }

// Exclude rejects every value in the list.
type Exclude []int

// Reject implements Filter.
func (e Exclude) Reject(v int) bool { return slices.Contains(e, v) }

// Add returns a copy of the list with v appended.
func (e Exclude) Add(v int) Exclude {
	out := make(Exclude, len(e), len(e)+1)
	copy(out, e)
	return append(out, v)
}

// Only rejects every value not in the list.
type Only []int

// Reject implements Filter.
func (o Only) Reject(v int) bool { return !slices.Contains(o, v) }

// Any combines filters; a value is rejected if any non-nil member rejects it.
func Any(filters ...Filter) Filter {
	var live []Filter
	for _, f := range filters {
		if f != nil {
			live = append(live, f)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return anyOf(live)
}

type anyOf []Filter

func (a anyOf) Reject(v int) bool {
	for _, f := range a {
		if f.Reject(v) {
			return true
		}
	}
	return false
}

// Rejects reports whether f is non-nil and rejects v.
func Rejects(f Filter, v int) bool {
	return f != nil && f.Reject(v)
}
