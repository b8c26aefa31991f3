// Package announce turns playback events into spoken-style prompts.
package announce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/pulse/internal/domain/playback"
	"github.com/okian/pulse/pkg/logger"
)

// Text renders the prompt for ev.
func Text(ev playback.Event) string {
	switch ev.Kind {
	case playback.EventPhase:
		switch ev.Phase {
		case playback.PhaseInstructions:
			return fmt.Sprintf("Get ready: %s", ev.Exercise)
		case playback.PhaseActive:
			return fmt.Sprintf("Set %d of %s. Go!", ev.SetIndex+1, ev.Exercise)
		case playback.PhaseResting:
			return fmt.Sprintf("Rest for %s", seconds(ev.Remaining))
		case playback.PhaseAbandoned:
			return "Workout stopped"
		}
	case playback.EventCountdown:
		if ev.Remaining > 3*time.Second {
			return fmt.Sprintf("%s left", seconds(ev.Remaining))
		}
		return fmt.Sprintf("%d", int(ev.Remaining/time.Second))
	case playback.EventCue:
		return "Halfway there, keep your form"
	case playback.EventPaused:
		return "Paused"
	case playback.EventResumed:
		return "Resuming"
	case playback.EventComplete:
		return "Workout complete. Great job!"
	}
	return strings.TrimSpace(string(ev.Kind) + " " + string(ev.Phase))
}

func seconds(d time.Duration) string {
	n := int(d / time.Second)
	if n == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", n)
}

// Log announces by writing each prompt to a logger.
type Log struct {
	logger logger.Logger
}

// NewLog creates a log announcer. A nil logger uses the global one.
func NewLog(l logger.Logger) *Log {
	if l == nil {
		l = logger.Get().Named("announce")
	}
	return &Log{logger: l}
}

// Announce implements playback.Announcer.
func (a *Log) Announce(ctx context.Context, ev playback.Event) {
	a.logger.Info(ctx, Text(ev),
		logger.String("kind", string(ev.Kind)),
		logger.String("phase", string(ev.Phase)),
		logger.Int("exercise", ev.ExerciseIndex),
		logger.Int("set", ev.SetIndex),
	)
}
