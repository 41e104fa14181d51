package testutil

import (
	"errors"
	"sync"
)

// ErrScriptExhausted is returned once every scripted draw has been used.
var ErrScriptExhausted = errors.New("testutil: script exhausted")

// Script replays a fixed list of draws for code that takes a chooser, such
// as prob.Table.Initialize.
//
// Each draw is reduced modulo the bound it is asked for, so a script can be
// written without knowing every bound in advance.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Script struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewScript creates a script that returns values in order.
func NewScript(values ...int) *Script {
	return &Script{values: values}
}

// Upto returns the next scripted value reduced into [0, n).
//
// Returns ErrScriptExhausted when no values are left.
func (s *Script) Upto(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return 0, ErrScriptExhausted
	}
	v := s.values[s.next] % n
	s.next++
	return v, nil
}

// Calls returns the number of values drawn so far.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Reset rewinds the script to its first value.
//
// Used for test reuse. After Reset(), the next call to Upto() replays the
// script from the start.
func (s *Script) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 0
}
