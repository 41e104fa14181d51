package prob

import (
	"fmt"
	"slices"
)

// Chooser draws a value in [0, n). Initialization draws are not part of
// any recorded decision sequence.
type Chooser func(n int) (int, error)

// Initialize sets every current weight. Without randomize the defaults are
// used. With randomize every enabled weight is redrawn:
//
//   - singles get a value in [0, 100]
//   - equal group members are flipped on or off; if all end up off the
//     group keeps its defaults
//   - exclusive groups get one member at 100 and distinct thresholds
//     in [1, 99] for the others, summing to at most 100 and never equal to
//     the winner's default
//
// Members whose default is 0 stay disabled either way. Without randomize
// every exclusive group needs a default of 100.
func (t *Table) Initialize(choose Chooser, randomize bool) error {
	t.Reset()
	if !randomize {
		return t.checkDefaults()
	}
	for _, e := range t.entries {
		var err error
		switch {
		case e.single != nil:
			err = randomSingle(choose, e.single)
		case e.group.Equal:
			err = randomEqual(choose, e.group)
		default:
			err = randomExclusive(choose, e.group)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) checkDefaults() error {
	for _, e := range t.entries {
		if e.group == nil || e.group.Equal {
			continue
		}
		values := make([]int, len(e.group.Members))
		for i, m := range e.group.Members {
			values[i] = m.Value
		}
		if msg := checkTop(values); msg != "" {
			return &ConfigError{Message: fmt.Sprintf("group %s: %s", e.group.Name, msg)}
		}
	}
	return nil
}

func randomSingle(choose Chooser, s *Single) error {
	if s.Default == 0 {
		return nil
	}
	v, err := choose(101)
	if err != nil {
		return err
	}
	s.Value = v
	return nil
}

func randomEqual(choose Chooser, g *Group) error {
	on := 0
	for _, m := range g.Members {
		if m.Default == 0 {
			continue
		}
		v, err := choose(2)
		if err != nil {
			return err
		}
		m.Value = v
		on += v
	}
	if on == 0 {
		for _, m := range g.Members {
			m.Value = m.Default
		}
	}
	return nil
}

func randomExclusive(choose Chooser, g *Group) error {
	var live []*Single
	for _, m := range g.Members {
		if m.Default != 0 {
			live = append(live, m)
		}
	}
	if len(live) == 0 {
		return nil
	}

	w, err := choose(len(live))
	if err != nil {
		return err
	}
	winner := live[w]
	winner.Value = 100

	// Each other member draws from [1, 100/len(live)], which keeps the sum
	// of the others below 100.
	limit := 100 / len(live)
	used := []int{winner.Default}
	for _, m := range live {
		if m == winner {
			continue
		}
		var candidates []int
		for v := 1; v <= limit; v++ {
			if !slices.Contains(used, v) {
				candidates = append(candidates, v)
			}
		}
		if len(candidates) == 0 {
			m.Value = 0
			continue
		}
		i, err := choose(len(candidates))
		if err != nil {
			return err
		}
		m.Value = candidates[i]
		used = append(used, m.Value)
	}
	return nil
}
