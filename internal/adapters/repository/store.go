// Package repository provides workout record stores: in-memory, SQLite and
// Postgres behind one contract.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/pulse/internal/domain/model"
)

// RecordStore persists workout records. Implementations are safe for
// concurrent use; the last writer wins on upsert.
type RecordStore interface {
	// Save upserts rec by ID, so retried saves are idempotent.
	Save(ctx context.Context, rec model.WorkoutSessionRecord) error
	// List returns an athlete's records, oldest first.
	List(ctx context.Context, athleteID string) ([]model.WorkoutSessionRecord, error)
	// Delete removes a record. A missing ID is not an error.
	Delete(ctx context.Context, id string) error
	// Close releases the underlying resources.
	Close() error
}

// MemoryStore is a RecordStore held in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]model.WorkoutSessionRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]model.WorkoutSessionRecord)}
}

// Save implements RecordStore.
func (s *MemoryStore) Save(ctx context.Context, rec model.WorkoutSessionRecord) error {
	if err := ctx.Err(); err != nil {
		return &SaveFailedError{ID: rec.ID, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	return nil
}

// List implements RecordStore.
func (s *MemoryStore) List(ctx context.Context, athleteID string) ([]model.WorkoutSessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.WorkoutSessionRecord, 0, len(s.recs))
	for _, r := range s.recs {
		if r.AthleteID == athleteID {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()
	sortRecords(out)
	return out, nil
}

// Delete implements RecordStore.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

// Close implements RecordStore.
func (s *MemoryStore) Close() error { return nil }

func sortRecords(recs []model.WorkoutSessionRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].Date.Equal(recs[j].Date) {
			return recs[i].Date.Before(recs[j].Date)
		}
		return recs[i].ID < recs[j].ID
	})
}
