package prob

import (
	"fmt"
	"io"
	"strings"
)

// DumpDefaults writes the default weights in the text format.
func (t *Table) DumpDefaults(w io.Writer) error {
	return t.dump(w, func(s *Single) int { return s.Default })
}

// DumpActual writes the current weights in the text format, preceded by a
// comment naming the seed that produced them.
func (t *Table) DumpActual(w io.Writer, seed uint64) error {
	if _, err := fmt.Fprintf(w, "%c Seed: %d\n\n", commentPrefix, seed); err != nil {
		return err
	}
	return t.dump(w, func(s *Single) int { return s.Value })
}

func (t *Table) dump(w io.Writer, value func(*Single) int) error {
	for _, e := range t.entries {
		var b strings.Builder
		if e.single != nil {
			fmt.Fprintf(&b, "%s%s%d", e.single.Name, valueSep, value(e.single))
		} else {
			open, end := byte(exclusiveOpen), byte(exclusiveEnd)
			if e.group.Equal {
				open, end = equalOpen, equalEnd
			}
			b.WriteByte(open)
			b.WriteString(e.group.Name)
			for _, m := range e.group.Members {
				fmt.Fprintf(&b, "%s%s%s%d", groupSep, m.Name, valueSep, value(m))
			}
			b.WriteByte(end)
		}
		b.WriteString("\n\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
