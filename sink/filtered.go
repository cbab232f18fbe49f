package sink

import (
	"context"

	"github.com/logtape-go/logtape/core"
)

// filtered gates a wrapped sink behind a predicate: records the filter
// rejects never reach the inner sink's Emit.
type filtered struct {
	inner core.Sink
	f     core.Filter
}

// Filtered wraps s so only records f accepts reach it.
func Filtered(s core.Sink, f core.Filter) core.Sink {
	return &filtered{inner: s, f: f}
}

func (f *filtered) Emit(record *core.Record) {
	if f.f(record) {
		f.inner.Emit(record)
	}
}

// Close forwards to the wrapped sink if it is a SyncReleaser.
func (f *filtered) Close() error {
	if r, ok := f.inner.(core.SyncReleaser); ok {
		return r.Close()
	}
	return nil
}

// CloseAsync forwards to the wrapped sink if it is an AsyncReleaser.
func (f *filtered) CloseAsync(ctx context.Context) error {
	if r, ok := f.inner.(core.AsyncReleaser); ok {
		return r.CloseAsync(ctx)
	}
	return nil
}
