// Package sentry provides a Sentry sink for logtape: records at or
// above a configurable threshold are captured as Sentry events, and
// every record at or above a separate breadcrumb level (captured ones
// included) is recorded as a breadcrumb so later captured events carry
// surrounding context. Records below the breadcrumb level are ignored.
// Stack-trace fingerprinting,
// batching, and retry/backoff are left to the sentry-go client's own
// options.
package sentry

import (
	"math/rand"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/level"
	"github.com/logtape-go/logtape/selflog"
)

// Sink forwards records to Sentry via client.
type Sink struct {
	client *sentry.Client
	hub    *sentry.Hub

	minLevel        level.Level
	breadcrumbLevel level.Level
	sampleRate      float64

	mu             sync.Mutex
	breadcrumbs    []*sentry.Breadcrumb
	maxBreadcrumbs int
}

// Option configures a Sink.
type Option func(*Sink)

// WithMinLevel sets the severity at or above which a record becomes a
// captured Sentry event rather than only a breadcrumb. Defaults to
// level.Error.
func WithMinLevel(lvl level.Level) Option {
	return func(s *Sink) { s.minLevel = lvl }
}

// WithBreadcrumbLevel sets the severity at or above which a record is
// recorded as a breadcrumb, whether or not it is also captured as an
// event. Defaults to level.Info.
func WithBreadcrumbLevel(lvl level.Level) Option {
	return func(s *Sink) { s.breadcrumbLevel = lvl }
}

// WithSampleRate sets the fraction (0.0-1.0) of eligible events actually
// sent to Sentry. Defaults to 1.0 (send everything).
func WithSampleRate(rate float64) Option {
	return func(s *Sink) { s.sampleRate = rate }
}

// WithMaxBreadcrumbs bounds the in-memory breadcrumb ring buffer
// attached to each captured event. Defaults to 50.
func WithMaxBreadcrumbs(n int) Option {
	return func(s *Sink) { s.maxBreadcrumbs = n }
}

// New creates a Sink sending events through client.
func New(client *sentry.Client, opts ...Option) *Sink {
	s := &Sink{
		client:          client,
		hub:             sentry.NewHub(client, sentry.NewScope()),
		minLevel:        level.Error,
		breadcrumbLevel: level.Info,
		sampleRate:      1.0,
		maxBreadcrumbs:  50,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit records a breadcrumb for every record at or above
// breadcrumbLevel, and additionally captures an event for anything at
// or above minLevel (subject to sampleRate).
func (s *Sink) Emit(record *core.Record) {
	if record.Level >= s.breadcrumbLevel {
		s.addBreadcrumb(record)
	}
	if record.Level < s.minLevel {
		return
	}
	if s.sampleRate < 1.0 && rand.Float64() >= s.sampleRate {
		return
	}
	s.capture(record)
}

func (s *Sink) addBreadcrumb(record *core.Record) {
	crumb := &sentry.Breadcrumb{
		Message:   record.RenderMessage(),
		Category:  record.Category.String(),
		Level:     sentryLevel(record.Level),
		Data:      record.Properties,
		Timestamp: record.Timestamp,
	}
	s.mu.Lock()
	s.breadcrumbs = append(s.breadcrumbs, crumb)
	if len(s.breadcrumbs) > s.maxBreadcrumbs {
		s.breadcrumbs = s.breadcrumbs[len(s.breadcrumbs)-s.maxBreadcrumbs:]
	}
	s.mu.Unlock()
}

func (s *Sink) capture(record *core.Record) {
	event := sentry.NewEvent()
	event.Message = record.RenderMessage()
	event.Level = sentryLevel(record.Level)
	event.Logger = record.Category.String()
	event.Extra = make(map[string]interface{}, len(record.Properties))
	for k, v := range record.Properties {
		event.Extra[k] = v
	}

	s.mu.Lock()
	event.Breadcrumbs = append([]*sentry.Breadcrumb(nil), s.breadcrumbs...)
	s.mu.Unlock()

	if errVal, ok := record.Properties["error"]; ok {
		if err, ok := errVal.(error); ok {
			event.Exception = []sentry.Exception{{
				Type:  "error",
				Value: err.Error(),
			}}
		}
	}

	s.hub.CaptureEvent(event)
}

func sentryLevel(lvl level.Level) sentry.Level {
	switch lvl {
	case level.Trace, level.Debug:
		return sentry.LevelDebug
	case level.Info:
		return sentry.LevelInfo
	case level.Warning:
		return sentry.LevelWarning
	case level.Error:
		return sentry.LevelError
	case level.Fatal:
		return sentry.LevelFatal
	default:
		return sentry.LevelInfo
	}
}

// Close flushes pending events and satisfies core.SyncReleaser.
func (s *Sink) Close() error {
	if !s.client.Flush(0) && selflog.IsEnabled() {
		selflog.Printf("[adapters/sentry] flush did not complete before timeout")
	}
	return nil
}
