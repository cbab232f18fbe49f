package logtape

import (
	"time"

	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/level"
	"github.com/logtape-go/logtape/parser"
	"github.com/logtape-go/logtape/selflog"
)

// emitRecord is the final step of the dispatch pipeline: resolve the
// sink multiset visible to n per its parent-sink policy, and invoke
// each one, isolating one sink's panic from the rest and from the
// caller.
func emitRecord(n *node, record *core.Record) {
	sinks := collectSinks(n, record.Level)
	emitToSinks(sinks, record, make(map[core.Sink]bool))
}

// emitToSinks invokes every sink not already in bypass. bypass grows as
// sinks fail so that a failing meta-logger sink can never re-trigger
// itself: emitMetaFailure reuses the same set when it fans the failure
// record back out to the meta-logger's own sinks.
func emitToSinks(sinks []core.Sink, record *core.Record, bypass map[core.Sink]bool) {
	for _, s := range sinks {
		if bypass[s] {
			continue
		}
		safeEmit(s, record, bypass)
	}
}

func safeEmit(s core.Sink, record *core.Record, bypass map[core.Sink]bool) {
	defer func() {
		if r := recover(); r != nil {
			if selflog.IsEnabled() {
				selflog.Printf("[emit] sink %T panicked emitting to %s: %v", s, record.Category, r)
			}
			bypass[s] = true
			emitMetaFailure(record, s, r, bypass)
		}
	}()
	s.Emit(record)
}

const sinkFailureTemplate = "Failed to emit a log record to sink {sink}: {error}"

// emitMetaFailure reports a sink panic as a fatal record on the
// ["logtape","meta"] category, carrying the failed sink, the recovered
// panic value, and the original record as structured properties. It
// reuses bypass so the failing sink is never asked to emit this (or any
// further) record again, which is what keeps a broken meta sink from
// recursing into itself forever.
func emitMetaFailure(orig *core.Record, failedSink core.Sink, panicVal any, bypass map[core.Sink]bool) {
	props := map[string]any{
		"sink":   failedSink,
		"error":  panicVal,
		"record": orig,
	}
	rec := &core.Record{
		Category:   core.MetaCategory,
		Level:      level.Fatal,
		Message:    parser.Render(parser.ParseCached(sinkFailureTemplate), props),
		RawMessage: sinkFailureTemplate,
		Timestamp:  time.Now(),
		Properties: props,
	}
	emitMeta(rec, bypass)
}

// emitMetaRecord emits a diagnostic record through the meta-logger's
// ordinary pipeline: the meta category is just another node in the
// tree, so an application that thresholds or filters ["logtape","meta"]
// gates these too.
func emitMetaRecord(lvl level.Level, msg string) {
	rec := &core.Record{
		Category:   core.MetaCategory,
		Level:      lvl,
		Message:    []any{msg},
		RawMessage: msg,
		Timestamp:  time.Now(),
		Properties: map[string]any{},
	}
	emitMeta(rec, make(map[core.Sink]bool))
}

// emitMeta runs rec through the meta node's threshold and filter chain
// before fanning out to its visible sinks.
func emitMeta(rec *core.Record, bypass map[core.Sink]bool) {
	metaNode := root().resolve(core.MetaCategory)
	if !thresholdAllows(metaNode, rec.Level) {
		return
	}
	if !effectiveFilter(metaNode)(rec) {
		return
	}
	emitToSinks(collectSinks(metaNode, rec.Level), rec, bypass)
}

func emitMetaInfo(msg string)    { emitMetaRecord(level.Info, msg) }
func emitMetaWarning(msg string) { emitMetaRecord(level.Warning, msg) }
