// Package profile aggregates scored assessments into a weakness profile.
package profile

import (
	"context"
	"math"
	"sort"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/scoring"
	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

// Default builder configuration constants.
const (
	defaultFocusK          = 2
	defaultMinTestTypes    = 2
	defaultStrongThreshold = 80
)

// Builder turns assessment results into a WeaknessProfile.
type Builder struct {
	focusK          int
	minTestTypes    int
	strongThreshold float64
	log             logger.Logger
}

// NewBuilder creates a builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		focusK:          defaultFocusK,
		minTestTypes:    defaultMinTestTypes,
		strongThreshold: defaultStrongThreshold,
	}

	// Apply all options
	for _, opt := range opts {
		opt(b)
	}

	if b.log == nil {
		b.log = logger.Get().Named("profile")
	}
	return b
}

type categoryAcc struct {
	score, percentile float64
	n                 int
	approximate       bool
}

// Build ranks categories weakest first. Only the latest result of each test
// type counts. Categories without results are omitted. Malformed results
// are logged and skipped.
func (b *Builder) Build(ctx context.Context, results []model.AssessmentResult) (model.WeaknessProfile, error) {
	latest := make(map[types.TestType]model.AssessmentResult)
	for _, r := range results {
		if !r.TestType.Valid() || math.IsNaN(r.Score) || math.IsInf(r.Score, 0) || r.Score < 0 || r.Score > 100 {
			b.log.Warn(ctx, "skipping malformed assessment result",
				logger.String("id", r.ID),
				logger.String("test_type", string(r.TestType)),
				logger.Float64("score", r.Score))
			continue
		}
		if cur, ok := latest[r.TestType]; !ok || supersedes(r, cur) {
			latest[r.TestType] = r
		}
	}

	if len(latest) < b.minTestTypes {
		metrics.RecordProfileInsufficient()
		return model.WeaknessProfile{}, &InsufficientDataError{Have: len(latest), Need: b.minTestTypes}
	}

	byCategory := make(map[types.Category]*categoryAcc)
	for tt, r := range latest {
		c := tt.Category()
		acc := byCategory[c]
		if acc == nil {
			acc = &categoryAcc{}
			byCategory[c] = acc
		}
		acc.score += r.Score
		acc.percentile += r.Percentile
		acc.approximate = acc.approximate || r.Approximate
		acc.n++
	}

	ranked := make([]model.RankedCategory, 0, len(byCategory))
	for c, acc := range byCategory {
		score := acc.score / float64(acc.n)
		ranked = append(ranked, model.RankedCategory{
			Category:    c,
			Score:       score,
			Percentile:  acc.percentile / float64(acc.n),
			Approximate: acc.approximate,
			Rating:      scoring.Rate(score),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score < ranked[j].Score
		}
		return ranked[i].Category < ranked[j].Category
	})

	k := min(b.focusK, len(ranked))
	focus := make([]types.Category, 0, k)
	for _, r := range ranked[:k] {
		focus = append(focus, r.Category)
	}

	var strengths []types.Category
	for i := len(ranked) - 1; i >= 0; i-- {
		if ranked[i].Score >= b.strongThreshold {
			strengths = append(strengths, ranked[i].Category)
		}
	}

	metrics.RecordProfileBuilt()
	return model.WeaknessProfile{Ranked: ranked, FocusAreas: focus, Strengths: strengths}, nil
}

// supersedes reports whether a replaces b as the latest attempt.
func supersedes(a, b model.AssessmentResult) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID > b.ID
}
