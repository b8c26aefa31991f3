package composer

import "github.com/okian/pulse/pkg/logger"

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithMaxExercises caps the number of exercises in one session.
func WithMaxExercises(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxExercises = n
		}
	}
}

// WithLogger sets the logger used for dropped templates.
func WithLogger(l logger.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.log = l
		}
	}
}
