// Package processor implements the per-machine runtime: item slots, fluid
// tanks, per-side sorption, output policies, energy and the tick state
// machine that turns matched inputs into products.
//
// A Processor is driven by an external clock. Every call to Tick advances
// at most one machine tick; cycles whose time is already covered complete
// within the same tick. Processors are not safe for concurrent use; the
// world that owns them ticks them from a single goroutine.
//
// State machine:
//
//	idle ── inputs match and outputs fit ──► ready
//	ready ── consume-up-front kinds move inputs to staging ──► processing
//	processing ── currentTime >= baseProcessTime ──► produce, re-match
//
// Any change to an input slot or tank re-matches the recipe and re-checks
// activity; a change to an output only re-checks activity.
package processor
