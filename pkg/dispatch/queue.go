package dispatch

import (
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// defaultBuffer is the queue depth before Post starts discarding.
const defaultBuffer = 256

// Queue is a single-goroutine work pump. All library state is mutated
// only from functions running on the queue.
type Queue struct {
	ch     chan func()
	done   chan struct{}
	closed atomic.Bool
	logger *slog.Logger
}

// NewQueue creates a queue. The caller starts the pump with go q.Run().
// A nil logger defaults to slog.Default().
func NewQueue(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		ch:     make(chan func(), defaultBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run pumps posted functions until Close. It blocks; run it on its own
// goroutine.
func (q *Queue) Run() {
	for {
		select {
		case fn := <-q.ch:
			q.execute(fn)
		case <-q.done:
			// Drain what was queued before the close.
			for {
				select {
				case fn := <-q.ch:
					q.execute(fn)
				default:
					return
				}
			}
		}
	}
}

// execute runs one queued function with panic recovery.
func (q *Queue) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Post enqueues fn to run on the queue goroutine. It never blocks: when
// the queue is full or closed the function is discarded, matching the
// best-effort degradation of the rest of the library.
func (q *Queue) Post(fn func()) {
	if q.closed.Load() {
		return
	}
	select {
	case q.ch <- fn:
	case <-q.done:
		// Closing, discard.
	default:
		q.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Close stops the pump after draining already-queued work. Post becomes a
// no-op. Close is idempotent.
func (q *Queue) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.done)
	}
}

// Done returns a channel closed when the queue begins shutting down.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}
