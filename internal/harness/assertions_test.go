package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertCount(t *testing.T) {
	assert.NoError(t, assertCount(2, []string{"0", "1"}))

	err := assertCount(3, []string{"0", "1"})
	require.Error(t, err)

	assertErr, ok := err.(*AssertionError)
	require.True(t, ok)
	assert.Equal(t, AssertCount, assertErr.Type)
	assert.Equal(t, 3, assertErr.Expected)
	assert.Equal(t, 2, assertErr.Actual)
	assert.Equal(t, []string{"0", "1"}, assertErr.Signatures)
}

func TestAssertUnique(t *testing.T) {
	assert.NoError(t, assertUnique([]string{"0_1", "1_0"}))
	assert.NoError(t, assertUnique(nil))

	err := assertUnique([]string{"0_1", "1_0", "0_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"0_1" emitted twice`)
}

func TestAssertContains(t *testing.T) {
	assert.NoError(t, assertContains("1_0", []string{"0_1", "1_0"}))

	err := assertContains("1_1", []string{"0_1", "1_0"})
	require.Error(t, err)

	assertErr, ok := err.(*AssertionError)
	require.True(t, ok)
	assert.Equal(t, "not emitted", assertErr.Actual)
}

func TestAssertNever(t *testing.T) {
	sigs := []string{"0_2_1", "1_0", "3"}

	assert.NoError(t, assertNever(1, 1, sigs))
	assert.NoError(t, assertNever(5, 0, sigs))

	err := assertNever(2, 1, sigs)
	require.Error(t, err)
	assertErr, ok := err.(*AssertionError)
	require.True(t, ok)
	assert.Equal(t, "0_2_1", assertErr.Actual)
}

func TestValueAt(t *testing.T) {
	v, ok := valueAt("4_12_0", 1)
	assert.True(t, ok)
	assert.Equal(t, 12, v)

	_, ok = valueAt("4_12_0", 3)
	assert.False(t, ok)

	_, ok = valueAt("", 0)
	assert.False(t, ok)
}

func TestEvaluateAssertions(t *testing.T) {
	sigs := []string{"0_0", "0_1"}
	failures := EvaluateAssertions([]Assertion{
		{Type: AssertCount, Count: 2},
		{Type: AssertContains, Signature: "1_1"},
		{Type: AssertNever, Position: 1, Value: 1},
	}, sigs)

	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "assertion 1: contains assertion failed")
	assert.Contains(t, failures[1], "assertion 2: never assertion failed")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
