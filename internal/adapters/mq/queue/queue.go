// Package queue holds completed workout records waiting to be persisted.
//
// The queue is bounded and never blocks a producer: a playback controller
// finishing a session must not stall on a slow store.
package queue

import (
	"context"
	"sync"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/pkg/metrics"
)

const defaultCapacity = 256

// Record is the payload flowing through the queue.
type Record = model.WorkoutSessionRecord

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record. It returns ErrFull or ErrClosed when the record
	// was not accepted.
	Enqueue(ctx context.Context, r Record) error

	// Dequeue returns a channel that yields queued records. The channel is
	// closed once the queue is closed and drained, or ctx ends.
	Dequeue(ctx context.Context) <-chan Record

	// Len returns the number of queued records.
	Len() int

	// Close stops accepting records. Records already queued are still
	// delivered to Dequeue.
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	records  chan Record
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	q.records = make(chan Record, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Record) error { //nolint:gocritic // hugeParam: records travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.records <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.records))
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-q.records:
				if !ok {
					return
				}
				select {
				case out <- r:
					metrics.RecordQueueDequeue()
					metrics.UpdateQueueSize(len(q.records))
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len implements Queue.
func (q *InMemoryQueue) Len() int {
	return len(q.records)
}

// Capacity returns the configured bound.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close implements Queue. Closing twice is a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
