package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor_NewCursor(t *testing.T) {
	c := NewCursor()
	assert.Equal(t, 0, c.Current(), "new cursor should start at 0")
}

func TestCursor_NewCursorAt(t *testing.T) {
	c := NewCursorAt(-1)
	assert.Equal(t, -1, c.Current())
	assert.Equal(t, 0, c.Next(), "first Next from -1 lands on position 0")
}

func TestCursor_NextAndSet(t *testing.T) {
	c := NewCursor()
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())

	c.Set(7)
	assert.Equal(t, 7, c.Current())
	assert.Equal(t, 8, c.Next())
}
