// Package prometheus renders the engine's counters in Prometheus text
// exposition format.
//
// [NewExporter] accepts an [authsync.Client] and exposes an http.Handler
// that serves all engine counters. Counter names are prefixed
// authsync_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
