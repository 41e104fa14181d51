package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceHashDeterminism(t *testing.T) {
	seq := []Decision{{0, 1, 2}, {1, 0, 2}, {2, 7, 10}}

	h1, err := SequenceHash(seq)
	require.NoError(t, err)
	h2, err := SequenceHash(seq)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "SequenceHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestSequenceHashChangesWithBound(t *testing.T) {
	a := MustSequenceHashForTest(t, []Decision{{0, 1, 2}})
	b := MustSequenceHashForTest(t, []Decision{{0, 1, 3}})
	assert.NotEqual(t, a, b, "same value under a different bound is a different decision")
}

func TestSignatureHashDomainSeparated(t *testing.T) {
	assert.Equal(t, SignatureHash("0_1"), SignatureHash("0_1"))
	assert.NotEqual(t, SignatureHash("0_1"), SignatureHash("1_0"))
	assert.NotEqual(t, hashWithDomain(DomainRun, []byte("0_1")), SignatureHash("0_1"))
}

func TestRunConfigHash(t *testing.T) {
	cfg := map[string]any{"mode": "random", "seed": int64(1)}
	assert.Equal(t, MustRunConfigHash(cfg), MustRunConfigHash(cfg))

	cfg2 := map[string]any{"mode": "random", "seed": int64(2)}
	assert.NotEqual(t, MustRunConfigHash(cfg), MustRunConfigHash(cfg2))

	_, err := RunConfigHash(map[string]any{"ratio": 0.5})
	assert.Error(t, err)
}

func MustSequenceHashForTest(t *testing.T, d []Decision) string {
	t.Helper()
	h, err := SequenceHash(d)
	require.NoError(t, err)
	return h
}

func TestModeKind(t *testing.T) {
	assert.Equal(t, KindDefault, ModeRandom.Kind())
	assert.Equal(t, KindDFS, ModeExhaustive.Kind())
	assert.Equal(t, KindDelta, ModeDelta.Kind())
}
