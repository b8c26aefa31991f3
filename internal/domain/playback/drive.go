package playback

import (
	"context"
	"fmt"
	"time"
)

// Drive ticks c every interval until it reaches a terminal phase or ctx is
// done. A shorter interval replays the session faster than real time.
func Drive(ctx context.Context, c *Controller, interval time.Duration) error {
	if interval <= 0 {
		interval = TickStep
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("playback interrupted: %w", ctx.Err())
		case <-c.Done():
			return nil
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Attach forwards samples from src into c until the source closes, the
// controller finishes or ctx is done. The returned channel is closed when
// forwarding stops.
func Attach(ctx context.Context, c *Controller, src MetricSource) <-chan struct{} {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		samples := src.Samples()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.Done():
				return
			case s, ok := <-samples:
				if !ok {
					return
				}
				c.Offer(s)
			}
		}
	}()
	return stopped
}
