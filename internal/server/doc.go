// Package server exposes a running world over HTTP.
//
// The API is read-mostly: processor status, sync messages, snapshots and
// the completion log. Commands are queued for the next tick while the world
// runs and applied directly otherwise. Prometheus metrics are served at
// /metrics.
//
// # Routes
//
//	GET  /health
//	GET  /processors
//	GET  /processors/:id
//	GET  /processors/:id/snapshot
//	GET  /processors/:id/completions?limit=N
//	POST /processors/:id/commands
//	GET  /metrics
package server
