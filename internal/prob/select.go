package prob

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/choicegen/internal/filter"
)

// Decider makes recorded decisions. *engine.Attempt implements it.
type Decider interface {
	ChooseUpto(n int, f filter.Filter, label string) (int, error)
	ChooseBool(p int, f filter.Filter, label string) (bool, error)
}

// Flip makes a yes/no decision weighted by the named single entry.
func (t *Table) Flip(d Decider, name string) (bool, error) {
	s, ok := t.singles[name]
	if !ok {
		return false, &UnknownNameError{Name: name}
	}
	f, err := t.Filter(name)
	if err != nil {
		return false, err
	}
	return d.ChooseBool(s.Value, f, name)
}

// Select picks a member of the named group and returns its name.
//
// An equal group is a decision over the member indexes. An exclusive group
// is a decision out of 100 resolved to the first member whose threshold
// exceeds it.
func (t *Table) Select(d Decider, name string) (string, error) {
	return t.SelectExcept(d, name)
}

// SelectExcept is Select with the listed members ruled out for this
// decision only.
func (t *Table) SelectExcept(d Decider, name string, except ...string) (string, error) {
	g, ok := t.groups[name]
	if !ok {
		return "", &UnknownNameError{Name: name}
	}
	f, err := t.Filter(name)
	if err != nil {
		return "", err
	}
	if len(except) > 0 {
		f = filter.Any(f, memberFilter(g, except))
	}

	if g.Equal {
		v, err := d.ChooseUpto(len(g.Members), f, name)
		if err != nil {
			return "", err
		}
		return g.Members[v].Name, nil
	}

	v, err := d.ChooseUpto(100, f, name)
	if err != nil {
		return "", err
	}
	return threshold(g, v)
}

// memberFilter rejects the decision values that resolve to a listed member.
func memberFilter(g *Group, names []string) filter.Filter {
	if g.Equal {
		var ex filter.Exclude
		for i, m := range g.Members {
			if slices.Contains(names, m.Name) {
				ex = append(ex, i)
			}
		}
		return ex
	}
	return filter.Func(func(v int) bool {
		name, err := threshold(g, v)
		return err == nil && slices.Contains(names, name)
	})
}

func threshold(g *Group, v int) (string, error) {
	live := make([]*Single, 0, len(g.Members))
	for _, m := range g.Members {
		if m.Value > 0 {
			live = append(live, m)
		}
	}
	slices.SortStableFunc(live, func(a, b *Single) int { return cmp.Compare(a.Value, b.Value) })
	for _, m := range live {
		if v < m.Value {
			return m.Name, nil
		}
	}
	return "", &ConfigError{Message: fmt.Sprintf("group %s: no threshold above %d", g.Name, v)}
}

// Distribution maps keys to integer weights and picks a key with
// probability proportional to its weight.
type Distribution struct {
	keys    []int
	weights []int
	total   int
}

// Add appends key with weight w.
func (d *Distribution) Add(key, w int) {
	d.keys = append(d.keys, key)
	d.weights = append(d.weights, w)
	d.total += w
}

// Weight returns the weight of key, 0 for unknown keys.
func (d *Distribution) Weight(key int) int {
	if i := slices.Index(d.keys, key); i >= 0 {
		return d.weights[i]
	}
	return 0
}

// Total returns the sum of all weights.
func (d *Distribution) Total() int { return d.total }

// KeyAt maps r in [0, Total()) to its key.
func (d *Distribution) KeyAt(r int) (int, error) {
	if r < 0 || r >= d.total {
		return 0, fmt.Errorf("distribution: %d outside [0, %d)", r, d.total)
	}
	for i, w := range d.weights {
		if r < w {
			return d.keys[i], nil
		}
		r -= w
	}
	return 0, fmt.Errorf("distribution: %d outside [0, %d)", r, d.total)
}

// Pick draws a key through d.
func (d *Distribution) Pick(dec Decider, label string) (int, error) {
	if d.total <= 0 {
		return 0, fmt.Errorf("distribution %s: no positive weight", label)
	}
	r, err := dec.ChooseUpto(d.total, nil, label)
	if err != nil {
		return 0, err
	}
	return d.KeyAt(r)
}
