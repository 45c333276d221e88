// Package store provides SQLite-backed persistence for a processor world.
//
// The store keeps:
//   - Processors: kind, insertion order and the latest state snapshot
//   - Links: which processor sits on which face of another
//   - Completions: an append-only log of finished processing cycles
//   - World: scalar world state such as the logical clock
//
// All queries order by integer sequence or tick columns, never timestamps,
// so reads are deterministic across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
