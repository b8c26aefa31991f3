package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/pulse/internal/domain/model"
)

func rec(id string) model.WorkoutSessionRecord {
	return model.WorkoutSessionRecord{ID: id, AthleteID: "athlete-1", Reps: 10, Date: time.Unix(0, 0).UTC()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}

	if err := q.Enqueue(ctx, rec("r1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	got := <-q.Dequeue(dctx)
	if got.ID != "r1" {
		t.Errorf("expected r1, got %v", got.ID)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"r1", "r2"} {
		if err := q.Enqueue(ctx, rec(id)); err != nil {
			t.Fatalf("expected enqueue of %s to succeed, got %v", id, err)
		}
	}
	if err := q.Enqueue(ctx, rec("r3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull when full, got %v", err)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Enqueue(ctx, rec("r1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(16))
	ctx := context.Background()
	producers, perProducer := 8, 50

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				for q.Enqueue(ctx, rec(fmt.Sprintf("r%d_%d", id, j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	seen := make(map[string]bool)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range q.Dequeue(ctx) {
			seen[r.ID] = true
		}
	}()

	wg.Wait()
	_ = q.Close()
	<-done

	if len(seen) != producers*perProducer {
		t.Errorf("expected %d distinct records, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	_ = q.Enqueue(ctx, rec("r1"))
	_ = q.Enqueue(ctx, rec("r2"))

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, rec("r3")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after closing, got %v", err)
	}

	// Records queued before Close still drain, then the channel closes.
	var drained []string
	timeout := time.After(time.Second)
	ch := q.Dequeue(ctx)
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				if len(drained) != 2 || drained[0] != "r1" || drained[1] != "r2" {
					t.Errorf("expected [r1 r2] drained, got %v", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			drained = append(drained, r.ID)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
