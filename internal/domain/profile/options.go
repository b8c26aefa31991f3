package profile

import "github.com/okian/pulse/pkg/logger"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithFocusK sets how many of the weakest categories become focus areas.
func WithFocusK(k int) Option {
	return func(b *Builder) {
		if k > 0 {
			b.focusK = k
		}
	}
}

// WithMinTestTypes sets the minimum number of distinct scored test types.
func WithMinTestTypes(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.minTestTypes = n
		}
	}
}

// WithStrongThreshold sets the score at or above which a category is a strength.
func WithStrongThreshold(score float64) Option {
	return func(b *Builder) {
		if score > 0 && score <= 100 {
			b.strongThreshold = score
		}
	}
}

// WithLogger sets the logger used for skipped results.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}
