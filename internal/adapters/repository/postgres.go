package repository

import (
	"context"
	"fmt"
	"time"

	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/okian/pulse/internal/domain/model"
)

// PostgresStore is a RecordStore backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and migrates the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		_ = db.Close()
		pool.Close()
		return nil, fmt.Errorf("%w: pgx driver: %w", ErrMigration, err)
	}
	err = runMigrations("migrations/postgres", "pgx5", driver)
	// Closing the migration driver hands its connection back to the pool.
	_ = driver.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// Save implements RecordStore.
func (s *PostgresStore) Save(ctx context.Context, r model.WorkoutSessionRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO workout_records (
			id, athlete_id, session_id, exercise_type, reps,
			form_score, peak_form_score, duration_ms, recorded_at, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			athlete_id = EXCLUDED.athlete_id,
			session_id = EXCLUDED.session_id,
			exercise_type = EXCLUDED.exercise_type,
			reps = EXCLUDED.reps,
			form_score = EXCLUDED.form_score,
			peak_form_score = EXCLUDED.peak_form_score,
			duration_ms = EXCLUDED.duration_ms,
			recorded_at = EXCLUDED.recorded_at,
			notes = EXCLUDED.notes`,
		r.ID, r.AthleteID, r.SessionID, r.ExerciseType, r.Reps,
		r.FormScore, r.PeakFormScore, r.Duration.Milliseconds(), r.Date.UTC(), r.Notes,
	)
	if err != nil {
		return &SaveFailedError{ID: r.ID, Err: err}
	}
	return nil
}

// List implements RecordStore.
func (s *PostgresStore) List(ctx context.Context, athleteID string) ([]model.WorkoutSessionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, athlete_id, session_id, exercise_type, reps,
		       form_score, peak_form_score, duration_ms, recorded_at, notes
		FROM workout_records
		WHERE athlete_id = $1
		ORDER BY recorded_at, id`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []model.WorkoutSessionRecord
	for rows.Next() {
		var (
			r          model.WorkoutSessionRecord
			durationMs int64
		)
		if err := rows.Scan(&r.ID, &r.AthleteID, &r.SessionID, &r.ExerciseType, &r.Reps,
			&r.FormScore, &r.PeakFormScore, &durationMs, &r.Date, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// Delete implements RecordStore.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM workout_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

// Close implements RecordStore.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
