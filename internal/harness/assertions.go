package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// AssertionError describes a failed assertion with the emitted signatures
// for debugging.
type AssertionError struct {
	Type       string
	Expected   any
	Actual     any
	Signatures []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s assertion failed: expected %v, got %v\nsignatures: %s",
		e.Type, e.Expected, e.Actual, strings.Join(e.Signatures, " "))
}

// EvaluateAssertions checks every assertion against the emitted signatures
// and returns one message per failure.
func EvaluateAssertions(assertions []Assertion, signatures []string) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(a, signatures); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(a Assertion, signatures []string) error {
	switch a.Type {
	case AssertCount:
		return assertCount(a.Count, signatures)
	case AssertUnique:
		return assertUnique(signatures)
	case AssertContains:
		return assertContains(a.Signature, signatures)
	case AssertNever:
		return assertNever(a.Position, a.Value, signatures)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertCount(want int, signatures []string) error {
	if len(signatures) != want {
		return &AssertionError{
			Type:       AssertCount,
			Expected:   want,
			Actual:     len(signatures),
			Signatures: signatures,
		}
	}
	return nil
}

func assertUnique(signatures []string) error {
	seen := make(map[string]bool, len(signatures))
	for _, sig := range signatures {
		if seen[sig] {
			return &AssertionError{
				Type:       AssertUnique,
				Expected:   "no repeated signature",
				Actual:     fmt.Sprintf("%q emitted twice", sig),
				Signatures: signatures,
			}
		}
		seen[sig] = true
	}
	return nil
}

func assertContains(want string, signatures []string) error {
	for _, sig := range signatures {
		if sig == want {
			return nil
		}
	}
	return &AssertionError{
		Type:       AssertContains,
		Expected:   want,
		Actual:     "not emitted",
		Signatures: signatures,
	}
}

func assertNever(pos, value int, signatures []string) error {
	for _, sig := range signatures {
		v, ok := valueAt(sig, pos)
		if ok && v == value {
			return &AssertionError{
				Type:       AssertNever,
				Expected:   fmt.Sprintf("no %d at position %d", value, pos),
				Actual:     sig,
				Signatures: signatures,
			}
		}
	}
	return nil
}

// valueAt returns the decision value at pos of a signature.
func valueAt(signature string, pos int) (int, bool) {
	if signature == "" {
		return 0, false
	}
	fields := strings.Split(signature, "_")
	if pos >= len(fields) {
		return 0, false
	}
	v, err := strconv.Atoi(fields[pos])
	if err != nil {
		return 0, false
	}
	return v, true
}
