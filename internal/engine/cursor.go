package engine

// Cursor is the logical position counter a provider stamps decisions with.
//
// Positions are ordering only: the same decision made at the same position
// renders the same signature, independent of wall time or call stack.
// A Cursor is owned by exactly one provider and is not safe for concurrent
// use; generation is single-threaded.
type Cursor struct {
	pos int
}

// NewCursor creates a cursor starting at 0.
func NewCursor() *Cursor {
	return &Cursor{}
}

// NewCursorAt creates a cursor starting at a specific position.
// The exhaustive provider starts at -1 so its first decision lands on 0.
func NewCursorAt(start int) *Cursor {
	return &Cursor{pos: start}
}

// Next advances the cursor and returns the new position.
func (c *Cursor) Next() int {
	c.pos++
	return c.pos
}

// Current returns the position without advancing.
func (c *Cursor) Current() int {
	return c.pos
}

// Set moves the cursor to pos. Used to roll back after a filter retry and
// to hand the replay depth over to the random provider.
func (c *Cursor) Set(pos int) {
	c.pos = pos
}
