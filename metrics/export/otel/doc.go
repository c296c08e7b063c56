// Package otel provides OpenTelemetry metric exporter bindings for the
// engine's counters.
//
// [NewExporter] registers an Int64ObservableCounter instrument per engine
// counter. A single callback reads the client's metrics snapshot on each
// collection cycle, so the engine's hot path stays untouched.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel
