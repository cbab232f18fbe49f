package logtape

import (
	"context"
	"testing"

	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/level"
)

// discardSink is a sink that discards all records, for benchmarking the
// pipeline stages around it rather than any particular sink's I/O.
type discardSink struct{}

func (discardSink) Emit(*core.Record) {}

func benchLogger(b *testing.B, opts ...BindingOption) *Logger {
	b.Helper()
	if err := Configure(context.Background(), Config{
		Reset: true,
		Sinks: map[string]core.Sink{"discard": discardSink{}},
		Loggers: []LoggerBinding{
			Binding("bench", append([]BindingOption{WithSinks("discard")}, opts...)...),
		},
	}); err != nil {
		b.Fatalf("Configure: %v", err)
	}
	b.Cleanup(func() { Reset(context.Background()) })
	return GetLogger("bench")
}

// BenchmarkEmitSimple measures the eager named-placeholder dispatch
// shape with no properties: threshold check, parser cache hit, empty
// filter chain, single-sink fan-out.
func BenchmarkEmitSimple(b *testing.B) {
	logger := benchLogger(b)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("this is a simple log message")
	}
}

// BenchmarkEmitWithProperties measures the same path with a populated
// properties map and a template that interpolates all of them.
func BenchmarkEmitWithProperties(b *testing.B) {
	logger := benchLogger(b)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("user {userId} performed {action} from {ip}", map[string]any{
			"userId": 123,
			"action": "login",
			"ip":     "10.0.0.1",
		})
	}
}

// BenchmarkEmitBelowThreshold measures the early-return path when a
// node's own lowestLevel rejects the record before any parsing happens.
func BenchmarkEmitBelowThreshold(b *testing.B) {
	logger := benchLogger(b, WithLowestLevel(level.Error))
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("this should never reach the parser or any sink")
	}
}

// BenchmarkEmitThroughAncestorChain measures sink fan-out across three
// inherited levels of the tree, the worst case for collectSinks' walk.
func BenchmarkEmitThroughAncestorChain(b *testing.B) {
	if err := Configure(context.Background(), Config{
		Reset: true,
		Sinks: map[string]core.Sink{"discard": discardSink{}},
		Loggers: []LoggerBinding{
			Binding("bench", WithSinks("discard")),
			Binding([]string{"bench", "mid"}, WithSinks("discard")),
			Binding([]string{"bench", "mid", "leaf"}, WithSinks("discard")),
		},
	}); err != nil {
		b.Fatalf("Configure: %v", err)
	}
	b.Cleanup(func() { Reset(context.Background()) })

	logger := GetLogger([]string{"bench", "mid", "leaf"})
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("leaf record fans out to three ancestors' sinks")
	}
}

// BenchmarkGetLoggerCached measures repeated GetLogger calls for an
// already-resolved category, the common call-site pattern for code that
// doesn't cache its own *Logger handle.
func BenchmarkGetLoggerCached(b *testing.B) {
	GetLogger([]string{"bench", "cached"})
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		GetLogger([]string{"bench", "cached"})
	}
}
