// Package seed generates deterministic synthetic athletes, assessments and
// workout history for demos and load tests.
package seed

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/scoring"
	"github.com/okian/pulse/internal/domain/types"
)

// Saver is the part of a record store the generator writes to.
type Saver interface {
	Save(ctx context.Context, rec model.WorkoutSessionRecord) error
}

// Generator produces synthetic data from a fixed seed. The same seed and
// inputs always yield the same output.
type Generator struct {
	faker  *gofakeit.Faker
	ranges *scoring.Normalizer
}

// New creates a generator for seed.
func New(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed), ranges: scoring.NewNormalizer()}
}

// Athlete returns a synthetic athlete profile.
func (g *Generator) Athlete() model.AthleteProfile {
	tiers := []string{string(types.TierBeginner), string(types.TierIntermediate), string(types.TierAdvanced)}
	return model.AthleteProfile{
		ID:   g.faker.UUID(),
		Name: g.faker.Name(),
		Age:  g.faker.Number(8, 60),
		Tier: types.Tier(g.faker.RandomString(tiers)),
	}
}

// Assessments returns one raw result per test type taken at `at`, with
// measurements drawn from the middle of each valid range.
func (g *Generator) Assessments(athleteID string, at time.Time) []model.AssessmentResult {
	out := make([]model.AssessmentResult, 0, len(types.TestTypes))
	for _, tt := range types.TestTypes {
		r, ok := g.ranges.Range(tt)
		if !ok {
			continue
		}
		span := r.Max - r.Min
		raw := g.faker.Float64Range(r.Min+span*0.2, r.Min+span*0.6)
		out = append(out, model.AssessmentResult{
			ID:             g.faker.UUID(),
			AthleteID:      athleteID,
			TestType:       tt,
			RawMeasurement: math.Round(raw*10) / 10,
			Timestamp:      at,
		})
	}
	return out
}

// History returns workout records for athleteID over the `days` days
// ending at end, oldest first. Roughly two thirds of days have a workout
// and form scores drift upward over the period.
func (g *Generator) History(athleteID string, end time.Time, days int) []model.WorkoutSessionRecord {
	kinds := make([]string, 0, len(types.TestTypes))
	for _, tt := range types.TestTypes {
		kinds = append(kinds, string(tt.Category()))
	}

	var out []model.WorkoutSessionRecord
	for d := days - 1; d >= 0; d-- {
		if g.faker.Number(0, 2) == 0 {
			continue
		}
		progress := float64(days-d) / float64(days)
		form := math.Min(100, g.faker.Float64Range(55, 75)+progress*15)
		reps := g.faker.Number(20, 120)
		day := end.AddDate(0, 0, -d)
		at := time.Date(day.Year(), day.Month(), day.Day(), g.faker.Number(6, 20), g.faker.Number(0, 59), 0, 0, day.Location())
		out = append(out, model.WorkoutSessionRecord{
			ID:            g.faker.UUID(),
			AthleteID:     athleteID,
			SessionID:     g.faker.UUID(),
			ExerciseType:  g.faker.RandomString(kinds),
			Reps:          reps,
			FormScore:     math.Round(form*10) / 10,
			PeakFormScore: math.Round(math.Min(100, form+g.faker.Float64Range(0, 10))*10) / 10,
			Duration:      time.Duration(g.faker.Number(15, 45)) * time.Minute,
			Date:          at,
			Notes:         fmt.Sprintf("seeded %s", g.faker.HackerVerb()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Write saves every record, stopping at the first failure.
func Write(ctx context.Context, s Saver, recs []model.WorkoutSessionRecord) error {
	for i, r := range recs {
		if err := s.Save(ctx, r); err != nil {
			return fmt.Errorf("seed record %d of %d: %w", i+1, len(recs), err)
		}
	}
	return nil
}
