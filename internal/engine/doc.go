// Package engine runs a world of processors.
//
// A World owns processors in insertion order, links between their faces,
// and a logical tick Clock. Each Step:
//  1. applies commands queued through Submit, in FIFO order
//  2. advances the clock
//  3. ticks every processor in insertion order; each pushes its output
//     tanks and slots to linked neighbours straight after its own tick
//  4. records completed cycles and autosaves every N ticks
//
// Run paces Step with a rate limiter and is the only writer while active.
// Other goroutines read through Status and mutate through Submit.
//
// Ordering never depends on wall time or map iteration, so the same
// commands against the same world always produce the same state.
package engine
