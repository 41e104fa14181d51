package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/choicegen/internal/ir"
)

func TestLoadFile(t *testing.T) {
	run, err := Load(filepath.Join("testdata", "exhaustive.cue"))
	require.NoError(t, err)

	assert.Equal(t, ir.ModeExhaustive, run.Mode)
	require.NotNil(t, run.Seed)
	assert.Equal(t, uint64(7), *run.Seed)
	assert.Equal(t, 12, run.MaxDepth)
	assert.Equal(t, "1,0,2", run.DebugSequence)
	assert.Equal(t, "runs.db", run.DB)
	assert.Equal(t, 1, run.Programs, "schema default")
	assert.Equal(t, -1, run.Delta.SwitchPoint)
	require.NoError(t, run.Validate())
}

func TestParseDefaults(t *testing.T) {
	run, err := Parse("empty.cue", []byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), run)
	assert.Nil(t, run.Seed)
	assert.Equal(t, uint64(99), run.SeedOr(99))
}

func TestParseDelta(t *testing.T) {
	run, err := Parse("delta.cue", []byte(`
mode: "delta"
delta: {
	input:        "seq.txt"
	no_reduction: true
}
`))
	require.NoError(t, err)
	assert.Equal(t, ir.ModeDelta, run.Mode)
	assert.Equal(t, "seq.txt", run.Delta.Input)
	assert.True(t, run.Delta.NoReduction)
	assert.Equal(t, -1, run.Delta.SwitchPoint)
	require.NoError(t, run.Validate())
}

func TestParseSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown mode", `mode: "bogus"`},
		{"negative seed", `seed: -1`},
		{"zero depth", `max_depth: 0`},
		{"unknown field", `colour: "blue"`},
		{"wrong type", `programs: "ten"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.cue", []byte(tt.src))
			require.Error(t, err)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, ErrCodeSchema, le.Code)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("broken.cue", []byte("mode: {"))
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeCompileFailed, le.Code)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
	assert.Contains(t, err.Error(), ErrCodeReadFailed)
}

func TestValidateConflicts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Run)
		wantErr string
	}{
		{"ok", func(*Run) {}, ""},
		{"unknown mode", func(r *Run) { r.Mode = "fast" }, "unknown mode"},
		{"zero depth", func(r *Run) { r.MaxDepth = 0 }, "max_depth"},
		{"negative programs", func(r *Run) { r.Programs = -1 }, "programs"},
		{"no attempts", func(r *Run) { r.MaxAttempts = 0 }, "max_attempts"},
		{"debug outside exhaustive", func(r *Run) { r.DebugSequence = "0,1" }, "debug_sequence"},
		{"delta without input", func(r *Run) { r.Mode = ir.ModeDelta }, "delta.input"},
		{"delta input outside delta", func(r *Run) { r.Delta.Input = "x" }, "require mode delta"},
		{"bad switch point", func(r *Run) {
			r.Mode = ir.ModeDelta
			r.Delta.Input = "x"
			r.Delta.SwitchPoint = -2
		}, "switch_point"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), ErrCodeConflict)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHashInputDistinguishesSeeds(t *testing.T) {
	r := Default()
	a, err := ir.RunConfigHash(r.HashInput(1))
	require.NoError(t, err)
	b, err := ir.RunConfigHash(r.HashInput(2))
	require.NoError(t, err)
	again, err := ir.RunConfigHash(r.HashInput(1))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)
}

func TestLoadWrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.cue")
	require.NoError(t, os.WriteFile(path, []byte("programs: 5\nrandom_probabilities: true\n"), 0o644))

	run, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, run.Programs)
	assert.True(t, run.RandomProbabilities)
}
