package playback

import (
	"time"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithAnnouncer sets the announcement sink.
func WithAnnouncer(a Announcer) Option {
	return func(c *Controller) {
		if a != nil {
			c.announcer = a
		}
	}
}

// WithRecordSink sets where the completion record is handed off.
func WithRecordSink(s RecordSink) Option {
	return func(c *Controller) {
		c.sink = s
	}
}

// WithClock sets the time source used to date records.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAutoBegin starts each exercise after n ticks of instructions.
// Zero keeps manual Begin.
func WithAutoBegin(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.autoBegin = n
		}
	}
}

// WithCountdownFrom sets the first countdown announcement, in seconds.
func WithCountdownFrom(seconds int) Option {
	return func(c *Controller) {
		if seconds > 0 {
			c.countdownFrom = time.Duration(seconds) * time.Second
		}
	}
}

// WithOnFinish registers a callback run once the controller reaches a
// terminal phase. rec is nil when the session was abandoned.
func WithOnFinish(fn func(s Snapshot, rec *model.WorkoutSessionRecord)) Option {
	return func(c *Controller) {
		c.onFinish = fn
	}
}

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}
