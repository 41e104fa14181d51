package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLine splits a line on sep into non-negative integers. Leading spaces
// before each field are ignored.
func ParseLine(line string, sep byte) ([]int, error) {
	if line == "" {
		return nil, fmt.Errorf("empty sequence")
	}
	fields := strings.Split(line, string(sep))
	out := make([]int, 0, len(fields))
	for i, f := range fields {
		f = strings.TrimLeft(f, " ")
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("field %d: %q is not an integer", i, f)
		}
		if n < 0 {
			return nil, fmt.Errorf("field %d: negative value %d", i, n)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseDebug parses a debug replay sequence in signature form ("0_1_1").
func ParseDebug(s string) ([]int, error) {
	nums, err := ParseLine(strings.TrimSpace(s), LinearSep)
	if err != nil {
		return nil, fmt.Errorf("debug sequence: %w", err)
	}
	return nums, nil
}
