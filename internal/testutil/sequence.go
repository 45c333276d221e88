// Package testutil holds deterministic helpers shared by tests and
// scenario runs.
package testutil

import (
	"fmt"
	"sync"
)

// Sequence is a resettable counter. It stamps trace events and, through
// Generate, hands out processor ids prefix-1, prefix-2, ...
//
// Thread-safety: All methods are safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int64
}

// NewSequence creates a sequence starting at 0. An empty prefix means "p".
func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = "p"
	}
	return &Sequence{prefix: prefix}
}

// Next increments and returns the counter. The first call returns 1.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

// Current returns the counter without incrementing.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Generate returns the next id. Satisfies engine.IDGenerator.
func (s *Sequence) Generate() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.Next())
}

// Reset rewinds to 0 so the same scenario can run again with identical
// ids and stamps.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}
