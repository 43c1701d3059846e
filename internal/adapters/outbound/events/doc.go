// Package events contains ports.EventSink adapters for the vault's audit trail.
//
//   - LogSink writes each event as a structured slog record.
//   - Recorder keeps events in memory (tests, the debug introspector).
//   - Fanout publishes to several sinks and joins their errors.
package events
