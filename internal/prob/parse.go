package prob

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	commentPrefix = '#'
	exclusiveOpen = '['
	exclusiveEnd  = ']'
	equalOpen     = '('
	equalEnd      = ')'
	groupSep      = ","
	valueSep      = "="
)

// ParseFile applies the configuration file at path to t.
func (t *Table) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open probabilities: %w", err)
	}
	defer f.Close()
	return t.Parse(f)
}

// Parse applies a configuration in the text format to t. Each line is
// validated completely before it is applied; the first invalid line stops
// parsing with a ConfigError.
func (t *Table) Parse(r io.Reader) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == commentPrefix {
			continue
		}

		var err error
		switch line[0] {
		case exclusiveOpen:
			err = t.parseGroup(line, false)
		case equalOpen:
			err = t.parseGroup(line, true)
		default:
			err = t.parseSingle(line)
		}
		if err != nil {
			return &ConfigError{Line: n, Text: line, Message: err.Error()}
		}
	}
	return sc.Err()
}

func (t *Table) parseSingle(line string) error {
	name, v, err := splitPair(line)
	if err != nil {
		return err
	}
	s, ok := t.singles[name]
	if !ok {
		if _, member := t.owner[name]; member {
			return fmt.Errorf("%s is a group member; set it on its group line", name)
		}
		return &UnknownNameError{Name: name}
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("weight %d outside 0..100", v)
	}
	s.Value = v
	return nil
}

func (t *Table) parseGroup(line string, equal bool) error {
	end := byte(exclusiveEnd)
	if equal {
		end = equalEnd
	}
	if line[len(line)-1] != end {
		return fmt.Errorf("missing closing %q", end)
	}

	body := strings.TrimSpace(line[1 : len(line)-1])
	if body == "" {
		return errors.New("empty group")
	}
	elems := strings.Split(body, groupSep)
	if len(elems) < 2 {
		return errors.New("group needs a name and at least one member")
	}

	name := strings.TrimSpace(elems[0])
	g, ok := t.groups[name]
	if !ok {
		return &UnknownNameError{Name: name}
	}
	if g.Equal != equal {
		return fmt.Errorf("%s is %s group", name, groupKind(g.Equal))
	}

	values := make(map[string]int, len(elems)-1)
	for _, el := range elems[1:] {
		member, v, err := splitPair(el)
		if err != nil {
			return err
		}
		if t.owner[member] != g {
			return fmt.Errorf("%s is not a member of %s", member, name)
		}
		if _, dup := values[member]; dup {
			return fmt.Errorf("%s listed twice", member)
		}
		values[member] = v
	}

	// Members not listed keep their current weight.
	merged := make([]int, len(g.Members))
	for i, m := range g.Members {
		merged[i] = m.Value
		if v, ok := values[m.Name]; ok {
			merged[i] = v
		}
	}
	msg := checkGroup(equal, merged)
	if msg == "" && !equal {
		msg = checkTop(merged)
	}
	if msg != "" {
		return errors.New(msg)
	}
	for i, m := range g.Members {
		m.Value = merged[i]
	}
	return nil
}

func splitPair(s string) (string, int, error) {
	name, val, ok := strings.Cut(s, valueSep)
	name = strings.TrimSpace(name)
	val = strings.TrimSpace(val)
	if !ok || name == "" || strings.Contains(val, valueSep) {
		return "", 0, fmt.Errorf("expected name=value, got %q", strings.TrimSpace(s))
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value %q for %s", val, name)
	}
	return name, v, nil
}

func groupKind(equal bool) string {
	if equal {
		return "an equal"
	}
	return "an exclusive"
}
