package prob

import (
	"fmt"
	"slices"

	"github.com/roach88/choicegen/internal/filter"
)

// Single is one named weight in [0, 100].
type Single struct {
	Name    string
	Default int
	Value   int
}

// Group is a named collection of weights.
type Group struct {
	Name string

	// Equal groups hold 0/1 members chosen uniformly. Exclusive groups
	// hold cumulative thresholds with one member at 100.
	Equal bool

	// Members are ordered; in equal groups a member's index is the
	// decision value that selects it.
	Members []*Single
}

// Member declares a group member for AddGroup.
type Member struct {
	Name    string
	Default int
}

type entry struct {
	single *Single
	group  *Group
}

func (e entry) name() string {
	if e.single != nil {
		return e.single.Name
	}
	return e.group.Name
}

// Table is the probability configuration of one run.
//
// A Table is not safe for concurrent use. It is set up once before the
// first attempt and only read afterwards.
type Table struct {
	entries []entry
	singles map[string]*Single
	groups  map[string]*Group
	owner   map[string]*Group
	extras  map[string]filter.Filter
}

// New returns an empty table.
func New() *Table {
	return &Table{
		singles: make(map[string]*Single),
		groups:  make(map[string]*Group),
		owner:   make(map[string]*Group),
		extras:  make(map[string]filter.Filter),
	}
}

func (t *Table) taken(name string) bool {
	_, s := t.singles[name]
	_, g := t.groups[name]
	_, m := t.owner[name]
	return s || g || m
}

// AddSingle adds a single entry with the given default weight.
func (t *Table) AddSingle(name string, def int) error {
	if t.taken(name) {
		return &ConfigError{Message: fmt.Sprintf("duplicate name %q", name)}
	}
	if def < 0 || def > 100 {
		return &ConfigError{Message: fmt.Sprintf("%s: weight %d outside 0..100", name, def)}
	}
	s := &Single{Name: name, Default: def, Value: def}
	t.singles[name] = s
	t.entries = append(t.entries, entry{single: s})
	return nil
}

// AddGroup adds a group. The defaults must form a valid group of its kind.
// Exclusive defaults need not include a 100: a table built only to be
// randomized never selects with them. Initialize without randomize and
// Parse require it.
func (t *Table) AddGroup(name string, equal bool, members ...Member) error {
	if t.taken(name) {
		return &ConfigError{Message: fmt.Sprintf("duplicate name %q", name)}
	}
	if len(members) == 0 {
		return &ConfigError{Message: fmt.Sprintf("group %s has no members", name)}
	}

	g := &Group{Name: name, Equal: equal}
	seen := make(map[string]bool, len(members))
	values := make([]int, len(members))
	for i, m := range members {
		if seen[m.Name] || t.taken(m.Name) || m.Name == name {
			return &ConfigError{Message: fmt.Sprintf("duplicate name %q", m.Name)}
		}
		seen[m.Name] = true
		values[i] = m.Default
		g.Members = append(g.Members, &Single{Name: m.Name, Default: m.Default, Value: m.Default})
	}
	if msg := checkGroup(equal, values); msg != "" {
		return &ConfigError{Message: fmt.Sprintf("group %s: %s", name, msg)}
	}

	t.groups[name] = g
	for _, m := range g.Members {
		t.owner[m.Name] = g
	}
	t.entries = append(t.entries, entry{group: g})
	return nil
}

// checkGroup returns a description of what makes values invalid for a
// group of the given kind, or "".
func checkGroup(equal bool, values []int) string {
	if equal {
		enabled := false
		for _, v := range values {
			if v != 0 && v != 1 {
				return fmt.Sprintf("equal group weight %d must be 0 or 1", v)
			}
			enabled = enabled || v == 1
		}
		if !enabled {
			return "all members are disabled"
		}
		return ""
	}

	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if v < 0 || v > 100 {
			return fmt.Sprintf("weight %d outside 0..100", v)
		}
		if v > 0 && seen[v] {
			return fmt.Sprintf("duplicate weight %d", v)
		}
		seen[v] = true
	}
	return ""
}

// checkTop returns "" if an exclusive group can resolve every decision
// value in [0, 100), which needs one member at 100.
func checkTop(values []int) string {
	if slices.Contains(values, 100) {
		return ""
	}
	return "one weight must be 100"
}

// Names returns the top-level entry names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.name()
	}
	return out
}

// Group returns the named group.
func (t *Table) Group(name string) (*Group, bool) {
	g, ok := t.groups[name]
	return g, ok
}

func (t *Table) lookup(name string) (*Single, *Group, error) {
	if s, ok := t.singles[name]; ok {
		return s, nil, nil
	}
	if g, ok := t.owner[name]; ok {
		i := slices.IndexFunc(g.Members, func(m *Single) bool { return m.Name == name })
		return g.Members[i], g, nil
	}
	return nil, nil, &UnknownNameError{Name: name}
}

// Get returns the current weight of a single entry or group member.
func (t *Table) Get(name string) (int, error) {
	s, _, err := t.lookup(name)
	if err != nil {
		return 0, err
	}
	return s.Value, nil
}

// Set changes the current weight of a single entry or group member. Group
// consistency is not rechecked; Parse validates whole group lines.
func (t *Table) Set(name string, v int) error {
	s, g, err := t.lookup(name)
	if err != nil {
		return err
	}
	if g != nil && g.Equal && v != 0 && v != 1 {
		return &ConfigError{Message: fmt.Sprintf("%s: equal group weight %d must be 0 or 1", name, v)}
	}
	if v < 0 || v > 100 {
		return &ConfigError{Message: fmt.Sprintf("%s: weight %d outside 0..100", name, v)}
	}
	s.Value = v
	return nil
}

// Reset restores every default weight.
func (t *Table) Reset() {
	for _, e := range t.entries {
		if e.single != nil {
			e.single.Value = e.single.Default
			continue
		}
		for _, m := range e.group.Members {
			m.Value = m.Default
		}
	}
}

// RegisterExtra installs an additional filter for the named entry. It is
// combined with the weight filter until unregistered.
func (t *Table) RegisterExtra(name string, f filter.Filter) error {
	if _, _, err := t.lookup(name); err != nil {
		if _, ok := t.groups[name]; !ok {
			return err
		}
	}
	t.extras[name] = f
	return nil
}

// UnregisterExtra removes the additional filter of the named entry.
func (t *Table) UnregisterExtra(name string) {
	delete(t.extras, name)
}

// Filter returns the predicate for decisions over the named entry.
//
// For an equal group it rejects the index of every disabled member. For an
// exclusive group the decision is a draw out of 100 mapped through the
// cumulative thresholds; under exhaustive enumeration only the last value
// of each member's band is admitted, so every member is visited once. For a
// single entry used as a yes/no decision it rejects the impossible
// outcome. Registered extra filters are always combined in.
func (t *Table) Filter(name string) (filter.Filter, error) {
	extra := t.extras[name]
	if g, ok := t.groups[name]; ok {
		if g.Equal {
			return filter.Any(equalFilter(g), extra), nil
		}
		return filter.Any(filter.ForModes(thresholdFilter(g), filter.ModeDFS), extra), nil
	}
	if s, ok := t.singles[name]; ok {
		return filter.Any(singleFilter(s), extra), nil
	}
	return nil, &UnknownNameError{Name: name}
}

func equalFilter(g *Group) filter.Filter {
	var off filter.Exclude
	for i, m := range g.Members {
		if m.Value == 0 {
			off = append(off, i)
		}
	}
	if len(off) == 0 {
		return nil
	}
	return off
}

func thresholdFilter(g *Group) filter.Filter {
	var keep filter.Only
	for _, m := range g.Members {
		if m.Value > 0 {
			keep = append(keep, m.Value-1)
		}
	}
	return keep
}

func singleFilter(s *Single) filter.Filter {
	switch s.Value {
	case 0:
		return filter.Exclude{1}
	case 100:
		return filter.Exclude{0}
	}
	return nil
}
