package engine

import "sync/atomic"

// Clock counts world ticks. Completions and saves carry its value rather
// than wall time, so a world loaded from the store keeps counting where it
// stopped.
//
// Reads are safe from any goroutine; only the stepping goroutine advances it.
type Clock struct {
	tick atomic.Int64
}

// NewClock returns a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next advances one tick and returns it.
func (c *Clock) Next() int64 {
	return c.tick.Add(1)
}

// Current returns the last tick handed out by Next.
func (c *Clock) Current() int64 {
	return c.tick.Load()
}

// Set rewinds or forwards the clock, as Load does.
func (c *Clock) Set(tick int64) {
	c.tick.Store(tick)
}

// Every reports whether the current tick falls on a period of n ticks.
// A period below 1 never fires.
func (c *Clock) Every(n int64) bool {
	t := c.tick.Load()
	return n > 0 && t > 0 && t%n == 0
}
