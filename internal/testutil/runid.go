package testutil

// FixedRunID generates the same run ID every time.
//
// This enables deterministic test execution and golden snapshot comparison:
// the same scenario stored under a FixedRunID produces byte-identical rows.
//
// Unlike engine.FixedGenerator which returns IDs in sequence and panics once
// they run out, this generator can be called any number of times.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a new fixed run ID generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
//
// Implements engine.RunIDGenerator interface.
func (g *FixedRunID) Generate() string {
	return g.id
}
