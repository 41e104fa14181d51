package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/choicegen/internal/ir"
)

func TestExclude(t *testing.T) {
	f := Exclude{0, 100}
	assert.True(t, f.Reject(0))
	assert.True(t, f.Reject(100))
	assert.False(t, f.Reject(50))

	g := f.Add(50)
	assert.True(t, g.Reject(50))
	assert.False(t, f.Reject(50), "Add must not mutate the receiver")
}

func TestOnly(t *testing.T) {
	f := Only{1, 3}
	assert.False(t, f.Reject(1))
	assert.True(t, f.Reject(2))
}

func TestAny(t *testing.T) {
	assert.Nil(t, Any(nil, nil))

	single := Exclude{1}
	assert.Equal(t, Filter(single), Any(nil, single))

	f := Any(Exclude{1}, Func(func(v int) bool { return v > 5 }))
	assert.True(t, f.Reject(1))
	assert.True(t, f.Reject(6))
	assert.False(t, f.Reject(3))
}

func TestRejectsNil(t *testing.T) {
	assert.False(t, Rejects(nil, 0))
	assert.True(t, Rejects(Exclude{0}, 0))
}

func TestScopedFilter(t *testing.T) {
	f := ForModes(Exclude{0}, ModeDFS)

	assert.True(t, Applies(f, ir.KindDFS))
	assert.False(t, Applies(f, ir.KindDefault))
	assert.Nil(t, Resolve(f, ir.KindDefault))
	assert.True(t, Rejects(Resolve(f, ir.KindDFS), 0))

	assert.True(t, Applies(Exclude{0}, ir.KindDelta), "unscoped filters apply everywhere")
	assert.False(t, Applies(nil, ir.KindDFS))
}

func TestResolveCombinedScopedFilter(t *testing.T) {
	f := Any(ForModes(Only{4, 9}, ModeDFS), Exclude{9})

	dfs := Resolve(f, ir.KindDFS)
	assert.False(t, Rejects(dfs, 4))
	assert.True(t, Rejects(dfs, 9))
	assert.True(t, Rejects(dfs, 5))

	def := Resolve(f, ir.KindDefault)
	assert.False(t, Rejects(def, 5), "the DFS-only part is dropped")
	assert.True(t, Rejects(def, 9))

	assert.Nil(t, Resolve(Any(ForModes(Exclude{1}, ModeDFS)), ir.KindDefault))
}
