package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
)

func pairs(bound int, values ...int) []ir.Decision {
	ds := make([]ir.Decision, len(values))
	for i, v := range values {
		ds[i] = ir.Decision{Position: i, Value: v, Bound: bound}
	}
	return ds
}

type countingObserver struct {
	attempts map[ir.AttemptStatus]int
	handoffs int
}

func (o *countingObserver) ObserveAttempt(_ ir.Kind, status ir.AttemptStatus, _ int) {
	if o.attempts == nil {
		o.attempts = make(map[ir.AttemptStatus]int)
	}
	o.attempts[status]++
}

func (o *countingObserver) ObserveHandoff() { o.handoffs++ }

func TestDelta_RoundTripWithoutReduction(t *testing.T) {
	in := pairs(10, 3, 1, 4, 1, 5, 9, 2, 6, 5, 3)
	f := newFacade(t, ir.KindDelta, 1,
		WithDeltaInput(sequence.NewDeltaInput(in)),
		WithNoDeltaReduction(),
	)

	var got []ir.Decision
	stats, err := f.Drive(t.Context(), uptoGen(10, 10, 10, 10, 10, 10, 10, 10, 10, 10), func(o Outcome) error {
		got = o.Decisions
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Attempts)
	assert.Equal(t, 1, stats.Emitted)
	assert.Equal(t, in, got)

	var want, out bytes.Buffer
	_, err = sequence.WriteDelta(&want, in)
	require.NoError(t, err)
	_, err = sequence.WriteDelta(&out, got)
	require.NoError(t, err)
	assert.Equal(t, want.String(), out.String())
}

func TestDelta_SwitchPointAtEndReplaysEverything(t *testing.T) {
	in := pairs(4, 0, 1, 2, 3)
	f := newFacade(t, ir.KindDelta, 1,
		WithDeltaInput(sequence.NewDeltaInput(in)),
		WithSwitchPoint(len(in)),
	)
	sigs, _ := signatures(t, f, uptoGen(4, 4, 4, 4))
	assert.Equal(t, []string{"0_1_2_3"}, sigs)
}

func TestDelta_HandoffToRandomProvider(t *testing.T) {
	obs := &countingObserver{}
	in := pairs(10, 7, 8, 9, 7, 8)
	f := newFacade(t, ir.KindDelta, 5,
		WithDeltaInput(sequence.NewDeltaInput(in)),
		WithSwitchPoint(2),
		WithObserver(obs),
	)

	at := f.Begin()
	for range 5 {
		_, err := at.ChooseUpto(10, nil, "")
		require.NoError(t, err)
	}

	assert.Equal(t, ir.KindDefault, f.Kind())
	assert.Equal(t, ir.KindDelta, f.Primary())
	assert.Equal(t, 5, f.Default().Depth())
	assert.Equal(t, 1, obs.handoffs)

	ds := f.Decisions()
	require.Len(t, ds, 5)
	assert.Equal(t, 7, ds[0].Value)
	assert.Equal(t, 8, ds[1].Value)
	for i, d := range ds {
		assert.Equal(t, i, d.Position)
		assert.Equal(t, 10, d.Bound)
	}
	assert.Equal(t, 2, f.Delta().Depth())

	f.ResetAttempt()
	assert.Equal(t, ir.KindDelta, f.Kind(), "reset restores the replay provider")
	assert.Equal(t, 0, f.Delta().Depth())
}

func TestDelta_HandoffDrawsLiveValues(t *testing.T) {
	in := pairs(1000, 7, 8, 9, 7, 8)
	differs := false
	for seed := range uint64(8) {
		f := newFacade(t, ir.KindDelta, seed,
			WithDeltaInput(sequence.NewDeltaInput(in)),
			WithSwitchPoint(2),
		)
		var got []ir.Decision
		_, err := f.Drive(t.Context(), uptoGen(1000, 1000, 1000, 1000, 1000), func(o Outcome) error {
			got = o.Decisions
			return nil
		})
		require.NoError(t, err)
		require.Len(t, got, 5)

		// The prefix below the switch point is always the recorded one.
		assert.Equal(t, in[:2], got[:2], "seed %d", seed)
		for i := 2; i < len(got); i++ {
			if got[i].Value != in[i].Value {
				differs = true
			}
		}
	}
	assert.True(t, differs, "values past the switch point never left the recorded input")
}

func TestDelta_HandoffDepthContinuesReplayDepth(t *testing.T) {
	in := pairs(10, 1, 2, 3)
	f := newFacade(t, ir.KindDelta, 5,
		WithDeltaInput(sequence.NewDeltaInput(in)),
		WithSwitchPoint(1),
	)

	at := f.Begin()
	_, err := at.ChooseUpto(10, nil, "")
	require.NoError(t, err)
	assert.Equal(t, ir.KindDefault, f.Kind())
	assert.Equal(t, 1, f.Default().Depth())
}

func TestDelta_DigitsHandoffMidString(t *testing.T) {
	in := pairs(16, 10, 11, 12, 13)
	f := newFacade(t, ir.KindDelta, 2,
		WithDeltaInput(sequence.NewDeltaInput(in)),
		WithSwitchPoint(2),
	)

	at := f.Begin()
	s, err := at.HexDigits(4)
	require.NoError(t, err)
	require.Len(t, s, 4)
	assert.Equal(t, "AB", s[:2])

	ds := f.Decisions()
	require.Len(t, ds, 4)
	for _, d := range ds {
		assert.Equal(t, 16, d.Bound)
	}
}

func TestDelta_BoundMismatchIsFatal(t *testing.T) {
	f := newFacade(t, ir.KindDelta, 1,
		WithDeltaInput(sequence.NewDeltaInput(pairs(10, 1, 2))),
		WithNoDeltaReduction(),
	)
	_, err := f.Drive(t.Context(), uptoGen(5), func(Outcome) error { return nil })
	require.Error(t, err)
	assert.True(t, IsInvalidDelta(err))
	assert.False(t, IsRecoverable(err))
	assert.Contains(t, err.Error(), "attempt 1")
}

func TestDelta_ExhaustedInputIsInvalid(t *testing.T) {
	f := newFacade(t, ir.KindDelta, 1,
		WithDeltaInput(sequence.NewDeltaInput(pairs(3, 1))),
		WithNoDeltaReduction(),
	)
	at := f.Begin()
	_, err := at.ChooseUpto(3, nil, "")
	require.NoError(t, err)
	_, err = at.ChooseUpto(3, nil, "")
	require.Error(t, err)
	assert.True(t, IsInvalidDelta(err))
	assert.Equal(t, ir.StatusInvalidDelta, StatusOf(err))
}

func TestDelta_FilterRejectionAbortsRun(t *testing.T) {
	obs := &countingObserver{}
	f := newFacade(t, ir.KindDelta, 1,
		WithDeltaInput(sequence.NewDeltaInput(pairs(3, 1))),
		WithObserver(obs),
	)

	emitted := 0
	stats, err := f.Drive(t.Context(), filteredGen(1, 3, filter.Exclude{1}), func(Outcome) error {
		emitted++
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsFilterError(err))
	assert.False(t, IsRecoverable(err))
	assert.Contains(t, err.Error(), "replayed value 1 rejected by filter")

	assert.Equal(t, 1, stats.Attempts)
	assert.Equal(t, 0, stats.Emitted)
	assert.Zero(t, emitted)
	assert.Equal(t, 1, obs.attempts[ir.StatusFilter])
	assert.Zero(t, obs.handoffs, "no hand-off after a rejected replay")
}

func TestGenError_FilterRecoverableOutsideReplay(t *testing.T) {
	for _, kind := range []ir.Kind{ir.KindDefault, ir.KindDFS} {
		err := newGenError(ErrCodeFilter, kind, 0, 2, "rejected")
		assert.True(t, err.Recoverable(), kind)
	}
	err := newGenError(ErrCodeFilter, ir.KindDelta, 0, 2, "rejected")
	assert.False(t, err.Recoverable())
	assert.Equal(t, ir.StatusFilter, err.Status())
}

func TestDelta_ChooseBoolIgnoresProbability(t *testing.T) {
	f := newFacade(t, ir.KindDelta, 1,
		WithDeltaInput(sequence.NewDeltaInput(pairs(2, 1, 0))),
		WithNoDeltaReduction(),
	)
	at := f.Begin()
	v, err := at.ChooseBool(0, nil, "")
	require.NoError(t, err)
	assert.True(t, v)
	v, err = at.ChooseBool(100, nil, "")
	require.NoError(t, err)
	assert.False(t, v)
}

func TestDelta_Statistics(t *testing.T) {
	f := newFacade(t, ir.KindDelta, 1,
		WithDeltaInput(sequence.NewDeltaInput(pairs(2, 0, 1, 0, 1, 1))),
		WithSwitchPoint(2),
	)
	var buf bytes.Buffer
	require.NoError(t, f.WriteStatistics(&buf))
	assert.Equal(t,
		"/*\n** This program was reduced by the simple delta reduction algorithm\n"+
			"** at a random point 2 with the sequence of length 5.\n*/\n",
		buf.String())
}

func TestDelta_RandomSwitchPointWithinInput(t *testing.T) {
	for seed := range uint64(20) {
		f := newFacade(t, ir.KindDelta, seed,
			WithDeltaInput(sequence.NewDeltaInput(pairs(2, 0, 1, 0))),
		)
		sp := f.Delta().SwitchPoint()
		assert.GreaterOrEqual(t, sp, 0)
		assert.Less(t, sp, 3)
	}
}

func TestDelta_SelectRequiresInput(t *testing.T) {
	err := New().Select(ir.KindDelta, 1)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	err = New(WithDeltaInput(sequence.NewDeltaInput(nil))).Select(ir.KindDelta, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
