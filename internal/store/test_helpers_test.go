package store

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/roach88/choicegen/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run header with minimal required fields.
func createTestRun(id string, seq int64) ir.Run {
	cfg := map[string]any{"mode": "exhaustive", "max_depth": 4, "seed": "7"}
	return ir.Run{
		ID:            id,
		Mode:          ir.ModeExhaustive,
		Seed:          7,
		MaxDepth:      4,
		Config:        cfg,
		ConfigHash:    ir.MustRunConfigHash(cfg),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
		Seq:           seq,
	}
}

// createTestAttempt creates an attempt whose signature matches its values.
func createTestAttempt(runID string, seq int64, status ir.AttemptStatus, values ...int) ir.Attempt {
	att := ir.Attempt{RunID: runID, Seq: seq, Status: status}
	for i, v := range values {
		att.Decisions = append(att.Decisions, ir.Decision{Position: i, Value: v, Bound: v + 2})
		if i > 0 {
			att.Signature += "_"
		}
		att.Signature += strconv.Itoa(v)
	}
	return att
}

// mustWriteRun writes a run or fails the test.
func mustWriteRun(t *testing.T, s *Store, run ir.Run) {
	t.Helper()
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
}

// mustWriteAttempt writes an attempt or fails the test.
func mustWriteAttempt(t *testing.T, s *Store, att ir.Attempt) {
	t.Helper()
	if _, err := s.WriteAttempt(context.Background(), att); err != nil {
		t.Fatalf("WriteAttempt() failed: %v", err)
	}
}
