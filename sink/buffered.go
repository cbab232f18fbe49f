package sink

import (
	"context"
	"sync"
	"time"

	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/selflog"
)

// buffered wraps a sink with a channel-backed buffer and a background
// worker that drains to it, so Emit never blocks the caller on the
// wrapped sink's I/O. Records reach the wrapped sink one at a time, as
// the worker takes them off the channel.
type buffered struct {
	inner core.Sink

	events chan *core.Record
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// Buffered wraps s so Emit enqueues onto a channel of the given size
// instead of calling s.Emit synchronously. A background goroutine drains
// the channel, forwarding each record as soon as it receives it; records
// are not batched, and no flush happens on a size or time threshold.
// interval only sets a ticker that wakes the worker (0 disables it).
// The buffer drops the newest
// record if the channel is full, logging the drop via selflog.
func Buffered(s core.Sink, size int, interval time.Duration) core.Sink {
	if size <= 0 {
		size = 1000
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &buffered{
		inner:  s,
		events: make(chan *core.Record, size),
		ctx:    ctx,
		cancel: cancel,
	}
	b.wg.Add(1)
	go b.run(interval)
	return b
}

func (b *buffered) Emit(record *core.Record) {
	select {
	case b.events <- record:
	default:
		if selflog.IsEnabled() {
			selflog.Printf("[sink.Buffered] buffer full, dropping record for %s", record.Category)
		}
	}
}

func (b *buffered) run(interval time.Duration) {
	defer b.wg.Done()

	var flush <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		flush = ticker.C
	}

	for {
		select {
		case record := <-b.events:
			b.emit(record)
		case <-flush:
			// Periodic wakeup; nothing is batched in this sink so there is
			// nothing additional to flush, but the tick keeps the worker
			// from parking indefinitely when the channel is idle.
		case <-b.ctx.Done():
			for {
				select {
				case record := <-b.events:
					b.emit(record)
				default:
					return
				}
			}
		}
	}
}

func (b *buffered) emit(record *core.Record) {
	defer func() {
		if r := recover(); r != nil && selflog.IsEnabled() {
			selflog.Printf("[sink.Buffered] wrapped sink panic: %v", r)
		}
	}()
	b.inner.Emit(record)
}

// CloseAsync stops accepting new records, drains whatever is buffered to
// the wrapped sink, then releases the wrapped sink if it supports
// release. Idempotent.
func (b *buffered) CloseAsync(ctx context.Context) error {
	var err error
	b.closeOnce.Do(func() {
		b.cancel()
		done := make(chan struct{})
		go func() {
			b.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
		if r, ok := b.inner.(core.SyncReleaser); ok {
			err = r.Close()
		} else if r, ok := b.inner.(core.AsyncReleaser); ok {
			err = r.CloseAsync(ctx)
		}
	})
	return err
}
