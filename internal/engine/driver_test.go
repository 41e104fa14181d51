package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/choicegen/internal/ir"
)

func TestDrive_RandomRunEmitsCount(t *testing.T) {
	f := newFacade(t, ir.KindDefault, 99)
	sigs, stats := signatures(t, f, uptoGen(10, 10), WithCount(4))
	assert.Len(t, sigs, 4)
	assert.Equal(t, 4, stats.Attempts)
	assert.Equal(t, 4, stats.Emitted)
}

func TestDrive_RandomRunDefaultsToOneProgram(t *testing.T) {
	f := newFacade(t, ir.KindDefault, 99)
	sigs, _ := signatures(t, f, uptoGen(10))
	assert.Len(t, sigs, 1)
}

func TestDrive_ExhaustiveCountStopsEarly(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1)
	sigs, _ := signatures(t, f, uptoGen(3, 3), WithCount(2))
	assert.Equal(t, []string{"0_0", "0_1"}, sigs)
	assert.False(t, f.Done())
}

func TestDrive_AttemptQuota(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1)
	stats, err := f.Drive(context.Background(), uptoGen(2, 2, 2), func(Outcome) error { return nil },
		WithRunID("run-q"), WithAttemptLimit(3))
	require.Error(t, err)
	assert.True(t, IsAttemptsExceededError(err))
	assert.Contains(t, err.Error(), "run-q")
	assert.Equal(t, 3, stats.Attempts)
}

func TestDrive_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFacade(t, ir.KindDFS, 1)
	stats, err := f.Drive(ctx, uptoGen(2), func(Outcome) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Attempts)
}

func TestDrive_GeneratorErrorIsFatal(t *testing.T) {
	boom := errors.New("boom")
	f := newFacade(t, ir.KindDefault, 1)
	var seen []Outcome
	_, err := f.Drive(context.Background(), func(*Attempt) (string, error) {
		return "", boom
	}, func(o Outcome) error {
		seen = append(seen, o)
		return nil
	}, WithFailedAttempts())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "attempt 1: boom", err.Error())
	require.Len(t, seen, 1)
	assert.Equal(t, ir.StatusFailed, seen[0].Status)
}

func TestDrive_EmitErrorStopsRun(t *testing.T) {
	stop := errors.New("disk full")
	f := newFacade(t, ir.KindDefault, 1)
	_, err := f.Drive(context.Background(), uptoGen(2), func(Outcome) error { return stop }, WithCount(3))
	assert.ErrorIs(t, err, stop)
}

func TestDrive_FatalErrorKeepsEmitFailure(t *testing.T) {
	boom := errors.New("boom")
	lost := errors.New("store closed")
	f := newFacade(t, ir.KindDefault, 1)
	_, err := f.Drive(context.Background(), func(*Attempt) (string, error) {
		return "", boom
	}, func(Outcome) error { return lost }, WithFailedAttempts())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, lost)
	assert.Contains(t, err.Error(), "emit attempt 1: store closed")
}

func TestDrive_FailedAttemptsAreEmittedOnRequest(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(1))
	var statuses []ir.AttemptStatus
	stats, err := f.Drive(context.Background(), uptoGen(2, 2), func(o Outcome) error {
		statuses = append(statuses, o.Status)
		return nil
	}, WithFailedAttempts())
	require.NoError(t, err)

	assert.Zero(t, stats.Emitted)
	assert.Equal(t, stats.Attempts, len(statuses))
	assert.Contains(t, statuses, ir.StatusExceedDepth)
	assert.Contains(t, statuses, ir.StatusBacktrack)
	assert.NotContains(t, statuses, ir.StatusOK)
}

func TestDrive_ProgramComesFromGenerator(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1)
	var programs []string
	_, err := f.Drive(context.Background(), func(at *Attempt) (string, error) {
		v, err := at.ChooseBool(50, nil, "")
		if err != nil {
			return "", err
		}
		if v {
			return "x = 1;", nil
		}
		return "x = 0;", nil
	}, func(o Outcome) error {
		programs = append(programs, o.Program)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x = 0;", "x = 1;"}, programs)
}

func TestDrive_SkipsDuplicateSignatures(t *testing.T) {
	// Attempts 2 and 3 stop after one decision, so both replay the prefix
	// "0". A grammar steered by anything but its recorded decisions can do
	// this; the repeat must not be emitted.
	gen := func(at *Attempt) (string, error) {
		n := 2
		if at.Seq() == 2 || at.Seq() == 3 {
			n = 1
		}
		for range n {
			if _, err := at.ChooseUpto(2, nil, ""); err != nil {
				return "", err
			}
		}
		return "", nil
	}

	f := newFacade(t, ir.KindDFS, 1)
	sigs, stats := signatures(t, f, gen)
	assert.Equal(t, []string{"0_0", "0", "0_1", "1_0", "1_1"}, sigs)
	assert.Equal(t, 1, stats.Duplicates)
	assert.True(t, f.Done())
}

func TestDrive_BeforeSelect(t *testing.T) {
	_, err := New().Drive(context.Background(), uptoGen(1), func(Outcome) error { return nil })
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestVerifyReplay_Deterministic(t *testing.T) {
	gen := uptoGen(7, 7, 7, 7)
	recorded, _ := signatures(t, newFacade(t, ir.KindDefault, 11), gen, WithCount(3))

	res, err := VerifyReplay(context.Background(), newFacade(t, ir.KindDefault, 11), gen, recorded)
	require.NoError(t, err)
	assert.True(t, res.Deterministic)
	assert.Equal(t, -1, res.FirstMismatch)
	assert.Equal(t, 3, res.Actual)
}

func TestVerifyReplay_ReportsFirstMismatch(t *testing.T) {
	gen := uptoGen(3, 3)
	expected := []string{"0_0", "2_2", "0_2"}

	res, err := VerifyReplay(context.Background(), newFacade(t, ir.KindDFS, 1), gen, expected)
	require.NoError(t, err)
	assert.False(t, res.Deterministic)
	assert.Equal(t, 1, res.FirstMismatch)
	assert.Equal(t, "2_2", res.Want)
	assert.Equal(t, "0_1", res.Got)
}

func TestVerifyReplay_Empty(t *testing.T) {
	res, err := VerifyReplay(context.Background(), New(), uptoGen(1), nil)
	require.NoError(t, err)
	assert.True(t, res.Deterministic)
}
