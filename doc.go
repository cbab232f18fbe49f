// Package logtape implements the hierarchical logger tree, filter+sink
// dispatch pipeline, message-template parser, and configuration lifecycle
// described by the LogTape record routing and rendering engine.
//
// A logger is obtained by category, an ordered sequence of strings:
//
//	log := logtape.GetLogger([]string{"my-app", "sql"})
//	log.Info("slow query {dur}ms", map[string]any{"dur": 1200})
//
// Sinks, filters, and per-category thresholds are wired in bulk with
// Configure/ConfigureSync, which atomically replace the tree's routing
// state between logging calls. Concrete sink and formatter
// implementations (console, file, OpenTelemetry, Sentry, ...) are
// external collaborators; this package only defines the Sink contract
// they satisfy (package core) and ships a couple of reference sinks
// (package sink) used by its own tests and examples.
package logtape
