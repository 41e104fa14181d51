package store

import (
	"context"
	"testing"

	"github.com/roach88/choicegen/internal/ir"
)

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1", 1)
	mustWriteRun(t, s, run)

	dup := run
	dup.Seed = 99
	if err := s.WriteRun(ctx, dup); err != nil {
		t.Fatalf("duplicate WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.Seed != 7 {
		t.Errorf("Seed = %d, want 7 (first write wins)", got.Seed)
	}
}

func TestWriteAttempt_StoresDecisions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, createTestRun("run-1", 1))

	att := createTestAttempt("run-1", 1, ir.StatusOK, 1, 0, 3)
	inserted, err := s.WriteAttempt(ctx, att)
	if err != nil {
		t.Fatalf("WriteAttempt() failed: %v", err)
	}
	if !inserted {
		t.Fatal("WriteAttempt() inserted = false on first write")
	}

	ds, err := s.ReadDecisions(ctx, "run-1", 1)
	if err != nil {
		t.Fatalf("ReadDecisions() failed: %v", err)
	}
	if len(ds) != 3 {
		t.Fatalf("len(decisions) = %d, want 3", len(ds))
	}
	for i, d := range ds {
		if d != att.Decisions[i] {
			t.Errorf("decision %d = %+v, want %+v", i, d, att.Decisions[i])
		}
	}
}

func TestWriteAttempt_DuplicateSeqIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, createTestRun("run-1", 1))

	mustWriteAttempt(t, s, createTestAttempt("run-1", 1, ir.StatusOK, 0, 1))

	inserted, err := s.WriteAttempt(ctx, createTestAttempt("run-1", 1, ir.StatusOK, 1, 1, 1))
	if err != nil {
		t.Fatalf("duplicate WriteAttempt() failed: %v", err)
	}
	if inserted {
		t.Error("duplicate WriteAttempt() reported inserted = true")
	}

	ds, err := s.ReadDecisions(ctx, "run-1", 1)
	if err != nil {
		t.Fatalf("ReadDecisions() failed: %v", err)
	}
	if len(ds) != 2 {
		t.Errorf("len(decisions) = %d, want 2 (original attempt kept)", len(ds))
	}
}

func TestWriteAttempt_ComputesSignatureHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, createTestRun("run-1", 1))
	mustWriteAttempt(t, s, createTestAttempt("run-1", 1, ir.StatusOK, 2, 0))

	atts, err := s.ReadAttempts(ctx, "run-1", "")
	if err != nil {
		t.Fatalf("ReadAttempts() failed: %v", err)
	}
	if len(atts) != 1 {
		t.Fatalf("len(attempts) = %d, want 1", len(atts))
	}
	if want := ir.SignatureHash("2_0"); atts[0].SignatureHash != want {
		t.Errorf("SignatureHash = %q, want %q", atts[0].SignatureHash, want)
	}
}

func TestWriteAttempt_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.WriteAttempt(context.Background(), createTestAttempt("missing", 1, ir.StatusOK, 0))
	if err == nil {
		t.Error("expected error writing attempt for unknown run")
	}
}

func TestWriteAttempt_NoDecisions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustWriteRun(t, s, createTestRun("run-1", 1))

	mustWriteAttempt(t, s, ir.Attempt{RunID: "run-1", Seq: 1, Status: ir.StatusOK})

	ds, err := s.ReadDecisions(ctx, "run-1", 1)
	if err != nil {
		t.Fatalf("ReadDecisions() failed: %v", err)
	}
	if ds == nil || len(ds) != 0 {
		t.Errorf("ReadDecisions() = %#v, want empty non-nil slice", ds)
	}
}
