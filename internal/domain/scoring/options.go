package scoring

import "github.com/okian/pulse/internal/domain/types"

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithRange overrides the accepted raw interval for a test type.
func WithRange(t types.TestType, minRaw, maxRaw float64) Option {
	return func(n *Normalizer) {
		if minRaw > 0 && maxRaw > minRaw {
			n.ranges[t] = Range{Min: minRaw, Max: maxRaw}
		}
	}
}

// WithAnchors sets the benchmark anchors of one test type and bracket.
func WithAnchors(t types.TestType, g types.AgeGroup, a Anchors) Option {
	return func(n *Normalizer) {
		if n.anchors[t] == nil {
			n.anchors[t] = map[types.AgeGroup]Anchors{}
		}
		n.anchors[t][g] = a
	}
}

// WithPercentiles sets the reference population points of one test type
// and bracket. Points must be ordered by ascending raw value.
func WithPercentiles(t types.TestType, g types.AgeGroup, points []Point) Option {
	return func(n *Normalizer) {
		if len(points) == 0 {
			return
		}
		if n.percentiles[t] == nil {
			n.percentiles[t] = map[types.AgeGroup][]Point{}
		}
		n.percentiles[t][g] = append([]Point(nil), points...)
	}
}

// WithoutBracket removes all reference data for a bracket, so lookups
// fall back to the nearest bracket.
func WithoutBracket(g types.AgeGroup) Option {
	return func(n *Normalizer) {
		for _, byGroup := range n.anchors {
			delete(byGroup, g)
		}
		for _, byGroup := range n.percentiles {
			delete(byGroup, g)
		}
	}
}
