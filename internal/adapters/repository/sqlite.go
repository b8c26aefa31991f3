package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/okian/pulse/internal/domain/model"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteStore is a RecordStore backed by a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens path (":memory:" for a private in-memory database)
// and migrates the schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// One connection keeps an in-memory database shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: sqlite driver: %w", ErrMigration, err)
	}
	if err := runMigrations("migrations/sqlite", "sqlite", driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save implements RecordStore.
func (s *SQLiteStore) Save(ctx context.Context, r model.WorkoutSessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workout_records (
			id, athlete_id, session_id, exercise_type, reps,
			form_score, peak_form_score, duration_ms, recorded_at, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			session_id = excluded.session_id,
			exercise_type = excluded.exercise_type,
			reps = excluded.reps,
			form_score = excluded.form_score,
			peak_form_score = excluded.peak_form_score,
			duration_ms = excluded.duration_ms,
			recorded_at = excluded.recorded_at,
			notes = excluded.notes`,
		r.ID, r.AthleteID, r.SessionID, r.ExerciseType, r.Reps,
		r.FormScore, r.PeakFormScore, r.Duration.Milliseconds(),
		r.Date.UTC().Format(time.RFC3339Nano), r.Notes,
	)
	if err != nil {
		return &SaveFailedError{ID: r.ID, Err: err}
	}
	return nil
}

// List implements RecordStore.
func (s *SQLiteStore) List(ctx context.Context, athleteID string) ([]model.WorkoutSessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, athlete_id, session_id, exercise_type, reps,
		       form_score, peak_form_score, duration_ms, recorded_at, notes
		FROM workout_records
		WHERE athlete_id = ?`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []model.WorkoutSessionRecord
	for rows.Next() {
		var (
			r          model.WorkoutSessionRecord
			durationMs int64
			recordedAt string
		)
		if err := rows.Scan(&r.ID, &r.AthleteID, &r.SessionID, &r.ExerciseType, &r.Reps,
			&r.FormScore, &r.PeakFormScore, &durationMs, &recordedAt, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		if r.Date, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("parsing recorded_at of %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	sortRecords(out)
	return out, nil
}

// Delete implements RecordStore.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workout_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

// Close implements RecordStore.
func (s *SQLiteStore) Close() error { return s.db.Close() }
