package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/pulse/internal/domain/model"
)

// Store is the persistence boundary the tracker reads and writes.
type Store interface {
	// Save upserts by record ID.
	Save(ctx context.Context, rec model.WorkoutSessionRecord) error
	List(ctx context.Context, athleteID string) ([]model.WorkoutSessionRecord, error)
	// Delete treats a missing ID as success.
	Delete(ctx context.Context, id string) error
}

// Tracker records sessions and derives metrics over an injected store.
type Tracker struct {
	store Store
	now   func() time.Time
	opts  []Option
}

// NewTracker creates a tracker. opts configure every Metrics call.
func NewTracker(store Store, now func() time.Time, opts ...Option) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{store: store, now: now, opts: opts}
}

// RecordSession stores rec. Saving the same ID twice keeps one record.
func (t *Tracker) RecordSession(ctx context.Context, rec model.WorkoutSessionRecord) error {
	if rec.ID == "" || rec.AthleteID == "" {
		return fmt.Errorf("%w: id and athlete id are required", ErrInvalidRecord)
	}
	if err := t.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("recording session %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteSession removes a record. Deleting a missing record is a no-op.
func (t *Tracker) DeleteSession(ctx context.Context, id string) error {
	if err := t.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Metrics recomputes progress for an athlete from the stored records plus
// any not yet persisted. A pending record replaces a stored one with the
// same ID; records of other athletes are ignored.
func (t *Tracker) Metrics(ctx context.Context, athleteID string, pending ...model.WorkoutSessionRecord) (model.ProgressMetrics, error) {
	recs, err := t.store.List(ctx, athleteID)
	if err != nil {
		return model.ProgressMetrics{}, fmt.Errorf("listing sessions for %s: %w", athleteID, err)
	}
	if len(pending) > 0 {
		recs = merge(recs, pending, athleteID)
	}
	return Compute(recs, t.now(), t.opts...), nil
}

func merge(stored, pending []model.WorkoutSessionRecord, athleteID string) []model.WorkoutSessionRecord {
	byID := make(map[string]int, len(stored)+len(pending))
	out := make([]model.WorkoutSessionRecord, 0, len(stored)+len(pending))
	for _, r := range stored {
		byID[r.ID] = len(out)
		out = append(out, r)
	}
	for _, r := range pending {
		if r.AthleteID != athleteID {
			continue
		}
		if i, ok := byID[r.ID]; ok {
			out[i] = r
			continue
		}
		byID[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}
