package store

import (
	"bytes"
	"context"
	"slices"
	"testing"

	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
)

func TestEmittedSignatures_SkipsDiscarded(t *testing.T) {
	s := createTestStore(t)
	mustWriteRun(t, s, createTestRun("run-1", 1))
	mustWriteAttempt(t, s, createTestAttempt("run-1", 1, ir.StatusOK, 0, 0))
	mustWriteAttempt(t, s, createTestAttempt("run-1", 2, ir.StatusBacktrack, 0))
	mustWriteAttempt(t, s, createTestAttempt("run-1", 3, ir.StatusOK, 0, 1))

	sigs, err := s.EmittedSignatures(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("EmittedSignatures() failed: %v", err)
	}
	if want := []string{"0_0", "0_1"}; !slices.Equal(sigs, want) {
		t.Errorf("EmittedSignatures() = %v, want %v", sigs, want)
	}
}

func TestEmittedSignatures_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	sigs, err := s.EmittedSignatures(context.Background(), "nope")
	if err != nil {
		t.Fatalf("EmittedSignatures() failed: %v", err)
	}
	if len(sigs) != 0 {
		t.Errorf("EmittedSignatures() = %v, want empty", sigs)
	}
}

func TestExportDelta_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	mustWriteRun(t, s, createTestRun("run-1", 1))
	att := createTestAttempt("run-1", 1, ir.StatusOK, 3, 0, 1)
	mustWriteAttempt(t, s, att)

	var buf bytes.Buffer
	if err := s.ExportDelta(context.Background(), "run-1", 1, &buf); err != nil {
		t.Fatalf("ExportDelta() failed: %v", err)
	}
	if got, want := buf.String(), "3,5\n0,2\n1,3\n"; got != want {
		t.Fatalf("ExportDelta() = %q, want %q", got, want)
	}

	pairs, err := sequence.ReadDelta(&buf)
	if err != nil {
		t.Fatalf("ReadDelta() failed: %v", err)
	}
	if !slices.Equal(pairs, att.Decisions) {
		t.Errorf("re-read pairs = %v, want %v", pairs, att.Decisions)
	}
}

func TestExportDelta_MissingAttempt(t *testing.T) {
	s := createTestStore(t)
	mustWriteRun(t, s, createTestRun("run-1", 1))

	var buf bytes.Buffer
	if err := s.ExportDelta(context.Background(), "run-1", 7, &buf); err == nil {
		t.Error("expected error exporting attempt without decisions")
	}
}
