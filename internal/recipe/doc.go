// Package recipe holds recipe definitions and the per-machine handler that
// registers them, indexes them in a hash cache and answers match queries.
//
// Lifecycle of a Handler:
//
//	h := recipe.NewHandler(cfg)
//	h.Register(def)      // any number; invalid definitions are rejected and logged
//	h.BuildCache()       // once registration is complete
//	info := h.Lookup(items, fluids)
//
// Registration and cache building happen only while no processor ticks.
// After BuildCache the handler is read-only and may be shared by every
// processor of its kind. A Registry groups handlers and builds their caches
// concurrently.
package recipe
