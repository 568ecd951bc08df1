package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recorder accepts deny events from the gates. Record must never block a
// request; persistence happens off the request path.
type Recorder interface {
	Record(event Event)
}

// NopRecorder discards events. Used when no audit store is configured.
type NopRecorder struct{}

// Record discards the event.
func (NopRecorder) Record(Event) {}

// AsyncRecorder buffers events on a channel drained by a background worker
// that writes to the store. When the buffer is full the event is dropped and
// counted; auth decisions are never delayed by the audit trail.
type AsyncRecorder struct {
	events  chan Event
	store   *Store
	logger  *zap.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	dropped int64
	closed  bool
}

// NewAsyncRecorder starts the worker goroutine.
func NewAsyncRecorder(store *Store, logger *zap.Logger) *AsyncRecorder {
	r := &AsyncRecorder{
		events: make(chan Event, 256),
		store:  store,
		logger: logger,
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record enqueues the event without blocking. The send happens under the
// same lock as the closed flag so intake cannot race Close.
func (r *AsyncRecorder) Record(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	select {
	case r.events <- event:
	default:
		r.dropped++
		r.logger.Warn("audit buffer full; event dropped", zap.Int64("dropped_total", r.dropped))
	}
}

// Close stops intake and waits for the worker to drain the buffer.
func (r *AsyncRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.events)
	r.wg.Wait()
}

func (r *AsyncRecorder) run() {
	defer r.wg.Done()
	for event := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.store.Insert(ctx, event); err != nil {
			r.logger.Warn("audit insert failed",
				zap.String("outcome", string(event.Outcome)),
				zap.Error(err),
			)
		}
		cancel()
	}
}
