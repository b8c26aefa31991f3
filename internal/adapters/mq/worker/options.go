package worker

import (
	"time"

	"github.com/okian/pulse/pkg/logger"
)

// Option applies a configuration option to the Persister.
type Option func(*Persister)

// WithName sets the persister name used in logs.
func WithName(name string) Option {
	return func(p *Persister) {
		if name != "" {
			p.name = name
		}
	}
}

// WithRetryInterval sets how often parked records are retried.
func WithRetryInterval(d time.Duration) Option {
	return func(p *Persister) {
		if d > 0 {
			p.retryInterval = d
		}
	}
}

// WithLogger sets a custom logger for the persister.
func WithLogger(l logger.Logger) Option {
	return func(p *Persister) {
		if l != nil {
			p.logger = l
		}
	}
}
