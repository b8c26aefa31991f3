package progress

import "time"

const defaultRecentSessions = 5

type config struct {
	loc    *time.Location
	recent int
}

func newConfig(opts []Option) config {
	cfg := config{loc: time.UTC, recent: defaultRecentSessions}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option applies a configuration option to Compute.
type Option func(*config)

// WithLocation sets the time zone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithRecentSessions sets how many of the newest records are returned.
func WithRecentSessions(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.recent = n
		}
	}
}
