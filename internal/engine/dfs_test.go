package engine

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
)

func TestDFS_EnumeratesEverySequenceOnce(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(10))

	sigs, stats := signatures(t, f, uptoGen(2, 2, 2))

	assert.Equal(t, []string{
		"0_0_0", "0_0_1", "0_1_0", "0_1_1",
		"1_0_0", "1_0_1", "1_1_0", "1_1_1",
	}, sigs)
	assert.True(t, f.Done())
	assert.Equal(t, 8, stats.Emitted)
	assert.Zero(t, stats.Duplicates)
	assert.Positive(t, stats.Backtracks)
}

func TestDFS_VariableShapeTree(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(10))

	gen := func(at *Attempt) (string, error) {
		n, err := at.ChooseUpto(3, nil, "count")
		if err != nil {
			return "", err
		}
		for range n {
			if _, err := at.ChooseUpto(2, nil, "bit"); err != nil {
				return "", err
			}
		}
		return "", nil
	}

	sigs, _ := signatures(t, f, gen)
	assert.Equal(t, []string{
		"0", "1_0", "1_1",
		"2_0_0", "2_0_1", "2_1_0", "2_1_1",
	}, sigs)
}

func TestDFS_FilterExcludesValues(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(10))

	sigs, _ := signatures(t, f, filteredGen(2, 3, filter.Exclude{1}))
	assert.Equal(t, []string{"0_0", "0_2", "2_0", "2_2"}, sigs)
}

func TestDFS_FilterRejectingEverythingEndsEnumeration(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(10))

	sigs, stats := signatures(t, f, filteredGen(1, 2, filter.Exclude{0, 1}))
	assert.Empty(t, sigs)
	assert.True(t, f.Done())
	assert.Equal(t, 1, stats.Backtracks)
}

func TestDFS_ScopedFilterIgnoredOutsideItsModes(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(10))

	onlyRandom := filter.ForModes(filter.Exclude{0}, filter.ModeDefault)
	sigs, _ := signatures(t, f, filteredGen(1, 2, onlyRandom))
	assert.Equal(t, []string{"0", "1"}, sigs)
}

func TestDFS_ChooseBoolExtremes(t *testing.T) {
	tests := []struct {
		name string
		p    int
		want []string
	}{
		{"always", 100, []string{"1"}},
		{"never", 0, []string{"0"}},
		{"either", 50, []string{"0", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(4))
			sigs, _ := signatures(t, f, func(at *Attempt) (string, error) {
				_, err := at.ChooseBool(tt.p, nil, "coin")
				return "", err
			})
			assert.Equal(t, tt.want, sigs)
		})
	}
}

func TestDFS_RevisitConsistency(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(10))
	dfs := f.DFS()
	gen := uptoGen(3, 2, 3)

	var prev []ir.Decision
	for i := 0; !f.Done() && i < 100; i++ {
		depth := dfs.DecisionDepth()
		at := f.Begin()
		_, _ = gen(at)
		cur := f.Decisions()

		for _, d := range cur {
			if d.Position < depth && d.Position < len(prev) {
				assert.Equal(t, prev[d.Position].Value, d.Value,
					"attempt %d: position %d above decision depth %d changed", at.Seq(), d.Position, depth)
			}
		}
		if at.Err() == nil {
			prev = cur
		}
		f.ResetAttempt()
	}
	require.True(t, f.Done())
}

func TestDFS_BacktrackingMovesDecisionDepthUp(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(10))
	dfs := f.DFS()
	gen := uptoGen(2, 3)

	backtracks := 0
	for !f.Done() {
		before := dfs.DecisionDepth()
		at := f.Begin()
		_, _ = gen(at)
		if IsBacktracking(at.Err()) {
			backtracks++
			assert.Less(t, dfs.DecisionDepth(), before)
		}
		f.ResetAttempt()
	}
	assert.Equal(t, 3, backtracks)
}

func TestDFS_ExceedMaxDepth(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(2))

	sigs, stats := signatures(t, f, uptoGen(2, 2, 2))
	assert.Empty(t, sigs, "no sequence fits in two positions")
	assert.True(t, f.Done())
	assert.Equal(t, 4, stats.DepthExceeded)
}

func TestDFS_ErrorSlotMakesLaterDecisionsNoOps(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(1))
	at := f.Begin()

	_, err := at.ChooseUpto(2, nil, "")
	require.NoError(t, err)

	_, err = at.ChooseUpto(2, nil, "")
	require.True(t, IsExceedMaxDepth(err))
	pos := f.DFS().Position()

	_, again := at.ChooseUpto(5, nil, "")
	assert.Same(t, err, again, "the stored error is returned unchanged")
	assert.Equal(t, pos, f.DFS().Position(), "no-op decisions do not move the cursor")
	assert.Equal(t, "0", f.Signature())
}

func TestDFS_DebugSequenceReplaysByPosition(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithDebugSequence([]int{1, 0, 2}))

	sigs, stats := signatures(t, f, uptoGen(2, 2, 3))
	assert.Equal(t, []string{"1_0_2"}, sigs)
	assert.Equal(t, 1, stats.Attempts)
	assert.True(t, f.Done())
}

func TestDFS_DebugSequenceKeepsFilteredValue(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := newFacade(t, ir.KindDFS, 1, WithDebugSequence([]int{1, 0}), WithLogger(logger))

	sigs, _ := signatures(t, f, filteredGen(2, 2, filter.Exclude{1}))
	assert.Equal(t, []string{"1_0"}, sigs)
	assert.Contains(t, logs.String(), "debug sequence value rejected by filter")
	assert.Contains(t, logs.String(), "pos=0")
}

func TestDFS_RevisitRejectedByFilterIsInconsistent(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(10))

	// The first position rejects 0 from the second attempt on, so the
	// replayed prefix no longer passes its filter.
	attempts := 0
	gen := func(at *Attempt) (string, error) {
		attempts++
		first := filter.Func(func(v int) bool { return attempts > 1 && v == 0 })
		if _, err := at.ChooseUpto(2, first, "first"); err != nil {
			return "", err
		}
		if _, err := at.ChooseUpto(2, nil, "second"); err != nil {
			return "", err
		}
		return "", nil
	}

	_, err := f.Drive(context.Background(), gen, func(Outcome) error { return nil })
	require.Error(t, err)
	var ge *GenError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, ErrCodeInconsistentReplay, ge.Code)
	assert.Equal(t, 0, ge.Position)
	assert.Contains(t, err.Error(), "stored value 0 now rejected by filter")
	assert.Equal(t, 2, attempts)
}

func TestDFS_PrefixedName(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(4))
	at := f.Begin()
	_, err := at.ChooseUpto(3, nil, "")
	require.NoError(t, err)
	_, err = at.ChooseUpto(3, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "p_0_0_func_1", at.PrefixedName("func_1"))
}

func TestDFS_HexDigitsAreNotDecisions(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(4))
	at := f.Begin()

	s, err := at.HexDigits(8)
	require.NoError(t, err)
	assert.Len(t, s, 8)
	assert.Empty(t, f.Decisions())
	assert.Equal(t, -1, f.DFS().Position())
}

func TestDFS_TraceLogsDecisions(t *testing.T) {
	f := newFacade(t, ir.KindDFS, 1, WithMaxDepth(4))
	at := f.Begin()
	_, err := at.ChooseUpto(2, nil, "stmt")
	require.NoError(t, err)

	assert.Equal(t, "0(stmt, pos = 0, decision_depth = 0)->", f.Trace())
}

func TestDFS_SelectRequiresPositiveDepth(t *testing.T) {
	f := New(WithMaxDepth(0))
	err := f.Select(ir.KindDFS, 1)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}
