// Package scoring converts raw assessment measurements into 0-100 scores
// and population percentiles.
//
// The score curve is piecewise linear through four benchmark anchors per
// test type and age bracket: floor maps to 0, average to 60, good to 80 and
// excellent to 100. Values past the floor score 0 and values past excellent
// score 100. Inverse tests (timed runs) use descending anchors, so a faster
// time always scores at least as high as a slower one.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/metrics"
)

// Rating labels, matching the agility benchmark bands.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingAverage   = "Average"
	RatingPoor      = "Poor"
)

// Result is the outcome of one normalization.
type Result struct {
	Score       float64
	Percentile  float64
	Approximate bool
	Rating      string
	// AgeGroup is the bracket whose reference data was used.
	AgeGroup types.AgeGroup
}

// Normalizer maps raw measurements to scores. It is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	ranges      map[types.TestType]Range
	anchors     map[types.TestType]map[types.AgeGroup]Anchors
	percentiles map[types.TestType]map[types.AgeGroup][]Point
}

// NewNormalizer creates a normalizer with the built-in reference tables.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		ranges:      defaultRanges(),
		anchors:     defaultAnchors(),
		percentiles: defaultPercentiles(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Range returns the accepted raw interval for t.
func (n *Normalizer) Range(t types.TestType) (Range, bool) {
	r, ok := n.ranges[t]
	return r, ok
}

// Normalize scores raw for test type t against the reference data of
// bracket g. Out-of-range input is rejected, never clamped.
func (n *Normalizer) Normalize(t types.TestType, raw float64, g types.AgeGroup) (Result, error) {
	r, ok := n.ranges[t]
	if !ok || !t.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTestType, t)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 || raw < r.Min || raw > r.Max {
		metrics.RecordMeasurementRejected(string(t))
		return Result{}, &MeasurementOutOfRangeError{TestType: t, Raw: raw, Min: r.Min, Max: r.Max}
	}

	a, used, approxA, ok := nearest(n.anchors[t], g)
	if !ok {
		return Result{}, fmt.Errorf("%w: no benchmarks for %q", ErrUnknownTestType, t)
	}
	score := curve(raw, a, t.LowerIsBetter())

	res := Result{
		Score:       score,
		Rating:      Rate(score),
		Approximate: approxA,
		AgeGroup:    used,
	}
	if pts, _, approxP, ok := nearest(n.percentiles[t], g); ok {
		res.Percentile = percentile(raw, pts)
		res.Approximate = res.Approximate || approxP
	} else {
		res.Percentile = score
		res.Approximate = true
	}

	metrics.RecordNormalization(string(t))
	return res, nil
}

// nearest looks up g, falling back to the closest bracket by ordinal.
// Equidistant brackets resolve to the younger one.
func nearest[V any](byGroup map[types.AgeGroup]V, g types.AgeGroup) (V, types.AgeGroup, bool, bool) {
	var zero V
	if len(byGroup) == 0 {
		return zero, "", false, false
	}
	if v, ok := byGroup[g]; ok {
		return v, g, false, true
	}
	want := g.Ordinal()
	if want < 0 {
		want = types.AgeSenior.Ordinal()
	}
	best, bestDist := -1, math.MaxInt
	for i, cand := range types.AgeGroups {
		if _, ok := byGroup[cand]; !ok {
			continue
		}
		d := i - want
		if d < 0 {
			d = -d
		}
		// strict less keeps the younger bracket on ties
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return zero, "", false, false
	}
	used := types.AgeGroups[best]
	return byGroup[used], used, true, true
}

// curve evaluates the piecewise linear score for raw.
func curve(raw float64, a Anchors, inverse bool) float64 {
	xs := [4]float64{a.Floor, a.Average, a.Good, a.Excellent}
	ys := [4]float64{scoreFloor, scoreAverage, scoreGood, scoreExcellent}
	x := raw
	if inverse {
		// Negating turns descending times into an ascending axis.
		x = -x
		for i := range xs {
			xs[i] = -xs[i]
		}
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[3] {
		return ys[3]
	}
	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			return lerp(x, xs[i-1], xs[i], ys[i-1], ys[i])
		}
	}
	return ys[3]
}

func percentile(raw float64, pts []Point) float64 {
	if raw <= pts[0].Raw {
		return clamp(pts[0].Percentile)
	}
	last := pts[len(pts)-1]
	if raw >= last.Raw {
		return clamp(last.Percentile)
	}
	for i := 1; i < len(pts); i++ {
		if raw <= pts[i].Raw {
			return clamp(lerp(raw, pts[i-1].Raw, pts[i].Raw, pts[i-1].Percentile, pts[i].Percentile))
		}
	}
	return clamp(last.Percentile)
}

func lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y1
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Rate returns the benchmark band label for a 0-100 score.
func Rate(score float64) string {
	switch {
	case score >= scoreExcellent:
		return RatingExcellent
	case score >= scoreGood:
		return RatingGood
	case score >= scoreAverage:
		return RatingAverage
	default:
		return RatingPoor
	}
}
