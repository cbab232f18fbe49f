package core

import "context"

// Sink consumes records. It is the terminal of the pipeline.
type Sink interface {
	// Emit writes the record to the sink's destination.
	Emit(record *Record)
}

// SyncReleaser is implemented by sinks (or filters) that own resources
// released synchronously. Close must be idempotent.
type SyncReleaser interface {
	Close() error
}

// AsyncReleaser is implemented by sinks (or filters) that own resources
// released asynchronously, e.g. a network connection that must flush
// before closing. CloseAsync must be idempotent.
type AsyncReleaser interface {
	CloseAsync(ctx context.Context) error
}
