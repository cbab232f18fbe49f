package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/logtape-go/logtape/core"
)

// Stream is a sink that serializes writes to an io.Writer through a
// single background worker, so concurrent Emit calls from different
// goroutines still reach the writer in call order. Delivery is strictly
// FIFO with no batching or overflow strategy: a stream sink exists for
// ordering, not throughput.
type Stream struct {
	w       io.Writer
	format  func(*core.Record) string
	events  chan *core.Record
	done    chan struct{}
	closeMu sync.Mutex
	closed  bool
}

// StreamOption configures a Stream sink.
type StreamOption func(*Stream)

// WithStreamFormat overrides how a record is rendered to a line before
// being written. Defaults to "[level] category: message" plus a newline,
// where message is Record.RenderMessage; this differs from Console's
// layout, which adds a timestamp and abbreviates the level.
func WithStreamFormat(format func(*core.Record) string) StreamOption {
	return func(s *Stream) { s.format = format }
}

// WithStreamBuffer sets the channel buffer between Emit callers and the
// serializing worker. Defaults to 256; Emit blocks once the buffer
// fills, which is the stream sink's only backpressure mechanism.
func WithStreamBuffer(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.events = make(chan *core.Record, n)
		}
	}
}

// NewStream returns a Stream sink writing to w. Close drains any
// in-flight records and stops the worker; it is idempotent.
func NewStream(w io.Writer, opts ...StreamOption) *Stream {
	s := &Stream{
		w:      w,
		events: make(chan *core.Record, 256),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.format == nil {
		s.format = defaultStreamFormat
	}
	go s.run()
	return s
}

func defaultStreamFormat(r *core.Record) string {
	return fmt.Sprintf("[%s] %s: %s\n", r.Level, r.Category, r.RenderMessage())
}

func (s *Stream) run() {
	defer close(s.done)
	for r := range s.events {
		io.WriteString(s.w, s.format(r))
	}
}

// Emit enqueues record for the serializing worker. It never blocks past
// the buffer configured via WithStreamBuffer, except when that buffer is
// full, in which case it blocks until space frees up — the same
// backpressure a caller gets from a blocking write, just moved one hop
// later.
func (s *Stream) Emit(record *core.Record) {
	// The lock is held across the send so a concurrent Close can't close
	// the channel between the closed check and the send. The worker
	// drains independently, so a full buffer can't deadlock against a
	// Close waiting on this lock.
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.events <- record
}

// Close stops accepting new records, waits for the worker to drain
// whatever is already queued, and returns. Idempotent.
func (s *Stream) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.events)
	s.closeMu.Unlock()
	<-s.done
	return nil
}

// CloseAsync is Close, but returns as soon as ctx is done even if the
// worker has not finished draining — callers that need Close's full
// drain guarantee should call Close directly instead.
func (s *Stream) CloseAsync(ctx context.Context) error {
	result := make(chan error, 1)
	go func() { result <- s.Close() }()
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	_ core.Sink          = (*Stream)(nil)
	_ core.SyncReleaser  = (*Stream)(nil)
	_ core.AsyncReleaser = (*Stream)(nil)
)
