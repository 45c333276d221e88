// Package harness runs processor scenarios against a real world.
//
// A scenario names a directory of CUE machine definitions, places
// processors, links them, and then drives them through steps. Every
// command and every recipe completion is traced; the trace and the final
// state can be compared against golden files.
//
// # Scenario Format
//
//	name: furnace_line
//	description: "Iron becomes steel and moves to the press"
//	machines: ../machines
//	processors:
//	  - {id: furnace, kind: furnace}
//	  - {id: press, kind: press}
//	links:
//	  - {from: furnace, side: east, to: press}
//	steps:
//	  - charge: {processor: furnace, amount: 400}
//	  - set_item: {processor: furnace, slot: 0, item: "ingotIron*2"}
//	  - tick: 20
//	  - expect:
//	      processor: furnace
//	      items: {0: "ingotIron*1"}
//	assertions:
//	  - type: completion_count
//	    processor: furnace
//	    count: 1
//
// Step actions: tick, set_item, insert, extract, fill, drain, charge,
// upgrades, halt, resume, clear, expect. Each step holds exactly one.
//
// # Assertion Types
//
//   - completion_count: number of completions, optionally per processor and recipe
//   - completion_order: recipe labels of every completion, in order
//   - final_state: a processor's state after the last step
//
// # Deterministic Testing
//
// The world is stepped directly, processor ids come from a fixed
// sequence, and completions land in an in-memory SQLite store, so two runs
// of one scenario produce identical traces.
package harness
