package announce

import (
	"context"
	"sync"

	"github.com/okian/pulse/internal/domain/playback"
	"github.com/okian/pulse/pkg/metrics"
)

const defaultBuffer = 32

// Async forwards events to a slower announcer from its own goroutine.
// Events arriving while the buffer is full are dropped so playback never
// waits on the sink.
type Async struct {
	next    playback.Announcer
	events  chan queued
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped int
}

type queued struct {
	ctx context.Context
	ev  playback.Event
}

// NewAsync starts forwarding to next with the given buffer size.
func NewAsync(next playback.Announcer, buffer int) *Async {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	a := &Async{
		next:   next,
		events: make(chan queued, buffer),
		done:   make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *Async) loop() {
	defer close(a.done)
	for q := range a.events {
		a.next.Announce(q.ctx, q.ev)
	}
}

// Announce implements playback.Announcer.
func (a *Async) Announce(ctx context.Context, ev playback.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.events <- queued{ctx: context.WithoutCancel(ctx), ev: ev}:
	default:
		a.dropped++
		metrics.RecordErrorByComponent("announce", "dropped")
	}
}

// Dropped returns how many events were discarded on a full buffer.
func (a *Async) Dropped() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dropped
}

// Close stops accepting events and waits for the buffered ones to be
// delivered.
func (a *Async) Close() error {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.events)
		a.mu.Unlock()
	})
	<-a.done
	return nil
}
