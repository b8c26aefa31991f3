package service

import (
	"time"

	"github.com/okian/pulse/internal/domain/playback"
	"github.com/okian/pulse/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the capacity of the pending-record queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRetryInterval sets how often parked records are retried.
func WithRetryInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retryInterval = d
		}
	}
}

// WithFocusK sets how many weak categories become focus areas.
func WithFocusK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.focusK = k
		}
	}
}

// WithMinTestTypes sets how many distinct tests a profile needs.
func WithMinTestTypes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minTestTypes = n
		}
	}
}

// WithStrongThreshold sets the score at which a category is a strength.
func WithStrongThreshold(score float64) Option {
	return func(s *Service) {
		s.strongThreshold = score
	}
}

// WithAnnouncer sets the sink for playback prompts.
func WithAnnouncer(a playback.Announcer) Option {
	return func(s *Service) {
		if a != nil {
			s.announcer = a
		}
	}
}

// WithCountdownFrom sets the countdown announcement start in seconds.
func WithCountdownFrom(seconds int) Option {
	return func(s *Service) {
		if seconds >= 0 {
			s.countdownFrom = seconds
		}
	}
}

// WithInstructionTicks sets how many ticks each exercise's instructions
// are shown before its first set starts. Zero requires a manual Begin for
// every exercise.
func WithInstructionTicks(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.instructionTicks = n
		}
	}
}

// WithLocation sets the zone that defines calendar days for streaks.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithRecentSessions sets how many recent sessions Metrics returns.
func WithRecentSessions(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.recentSessions = n
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
