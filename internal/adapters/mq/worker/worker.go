// Package worker persists completed workout records in the background.
//
// A record handed to Submit is never lost while the process runs: it is
// either queued, saved, or parked as pending until a later retry succeeds.
package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/pulse/internal/adapters/mq/queue"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

const defaultRetryInterval = 30 * time.Second

// Saver is the part of a record store the persister writes to.
type Saver interface {
	Save(ctx context.Context, rec model.WorkoutSessionRecord) error
}

// Queue is the record queue the persister consumes.
type Queue interface {
	Enqueue(ctx context.Context, r queue.Record) error
	Dequeue(ctx context.Context) <-chan queue.Record
	Close() error
}

type entry struct {
	rec    model.WorkoutSessionRecord
	parked bool
}

// Persister moves records from the queue into the store, retrying once and
// parking records whose save still fails.
type Persister struct {
	queue         Queue
	store         Saver
	name          string
	retryInterval time.Duration
	logger        logger.Logger

	// saveMu serializes saves against Discard so a discarded record is
	// never written after its removal.
	saveMu sync.Mutex

	mu      sync.Mutex
	unsaved map[string]*entry

	startOnce sync.Once
	stopOnce  sync.Once
	shutdown  chan struct{}
	done      chan struct{}
}

// NewPersister creates a persister over q and store. Call Run to start it.
func NewPersister(q Queue, store Saver, opts ...Option) *Persister {
	p := &Persister{
		queue:         q,
		store:         store,
		name:          "persister",
		retryInterval: defaultRetryInterval,
		unsaved:       make(map[string]*entry),
		shutdown:      make(chan struct{}),
		done:          make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}

	return p
}

// Submit hands rec to the persister. When the queue refuses it the record
// is parked and retried on the next flush.
func (p *Persister) Submit(ctx context.Context, rec model.WorkoutSessionRecord) error { //nolint:gocritic // hugeParam: records travel by value
	if rec.ID == "" {
		return ErrMissingID
	}

	p.mu.Lock()
	e := &entry{rec: rec}
	p.unsaved[rec.ID] = e
	p.mu.Unlock()

	if err := p.queue.Enqueue(ctx, rec); err != nil {
		p.mu.Lock()
		e.parked = true
		p.mu.Unlock()
		p.logger.Warn(ctx, "record parked, queue refused it",
			logger.String("record_id", rec.ID),
			logger.Error(err),
		)
	}
	p.updatePending()
	return nil
}

// Run consumes the queue until it is closed, ctx ends or Shutdown is called.
func (p *Persister) Run(ctx context.Context) {
	started := false
	p.startOnce.Do(func() { started = true })
	if !started {
		return
	}
	defer close(p.done)

	ticker := time.NewTicker(p.retryInterval)
	defer ticker.Stop()

	recs := p.queue.Dequeue(ctx)
	stop := p.shutdown
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Flush(ctx)
		case rec, ok := <-recs:
			if !ok {
				p.Flush(ctx)
				return
			}
			p.Flush(ctx)
			p.persist(ctx, rec.ID)
		case <-stop:
			// Close the queue and keep draining until the channel closes.
			p.closeQueue(ctx)
			stop = nil
		}
	}
}

// Flush retries every parked record, oldest first.
func (p *Persister) Flush(ctx context.Context) {
	p.mu.Lock()
	parked := make([]model.WorkoutSessionRecord, 0, len(p.unsaved))
	for _, e := range p.unsaved {
		if e.parked {
			parked = append(parked, e.rec)
		}
	}
	p.mu.Unlock()

	sortByDate(parked)
	for _, rec := range parked {
		if ctx.Err() != nil {
			return
		}
		p.persist(ctx, rec.ID)
	}
}

// persist saves the record with one retry. A record no longer tracked has
// been discarded or already saved and is skipped.
func (p *Persister) persist(ctx context.Context, id string) {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	e, ok := p.unsaved[id]
	var rec model.WorkoutSessionRecord
	if ok {
		rec = e.rec
	}
	p.mu.Unlock()
	if !ok {
		return
	}

	err := p.store.Save(ctx, rec)
	if err != nil {
		metrics.RecordSaveRetry()
		err = p.store.Save(ctx, rec)
	}

	p.mu.Lock()
	if err != nil {
		e.parked = true
	} else {
		delete(p.unsaved, id)
	}
	p.mu.Unlock()
	p.updatePending()

	if err != nil {
		metrics.RecordSaveFailure()
		metrics.RecordErrorByComponent("worker", "save_failed")
		p.logger.Error(ctx, "record save failed, parked as pending",
			logger.String("record_id", id),
			logger.Error(err),
		)
		return
	}
	metrics.RecordRecordSaved()
	p.logger.Debug(ctx, "record saved", logger.String("record_id", id))
}

// Pending returns the athlete's records that are not yet saved, oldest
// first. Queued and parked records are both included.
func (p *Persister) Pending(athleteID string) []model.WorkoutSessionRecord {
	p.mu.Lock()
	out := make([]model.WorkoutSessionRecord, 0)
	for _, e := range p.unsaved {
		if e.rec.AthleteID == athleteID {
			out = append(out, e.rec)
		}
	}
	p.mu.Unlock()
	sortByDate(out)
	return out
}

func sortByDate(recs []model.WorkoutSessionRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].Date.Equal(recs[j].Date) {
			return recs[i].Date.Before(recs[j].Date)
		}
		return recs[i].ID < recs[j].ID
	})
}

// Discard forgets an unsaved record. It waits for an in-flight save to
// finish, so the caller may delete from the store afterwards. It reports
// whether the record was still unsaved.
func (p *Persister) Discard(id string) bool {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	_, ok := p.unsaved[id]
	delete(p.unsaved, id)
	p.mu.Unlock()
	p.updatePending()
	return ok
}

// PendingCount returns the number of unsaved records.
func (p *Persister) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.unsaved)
}

// Shutdown closes the queue, waits for queued records to be persisted and
// returns once Run has exited or ctx ends. Records whose save still fails
// stay pending.
func (p *Persister) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.shutdown) })
	p.startOnce.Do(func() {
		// Run never started, so drain here.
		defer close(p.done)
		p.closeQueue(ctx)
		for rec := range p.queue.Dequeue(ctx) {
			p.persist(ctx, rec.ID)
		}
		p.Flush(ctx)
	})

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "shutdown timed out", logger.Int("pending", p.PendingCount()))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (p *Persister) closeQueue(ctx context.Context) {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
}

func (p *Persister) updatePending() {
	metrics.UpdateRecordsPending(p.PendingCount())
}
