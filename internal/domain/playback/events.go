package playback

import (
	"context"
	"time"

	"github.com/okian/pulse/internal/domain/model"
)

// Phase is the position of a controller in the exercise/set progression.
type Phase string

const (
	PhaseInstructions Phase = "instructions"
	PhaseActive       Phase = "active"
	PhaseResting      Phase = "resting"
	PhaseComplete     Phase = "complete"
	PhaseAbandoned    Phase = "abandoned"
)

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool { return p == PhaseComplete || p == PhaseAbandoned }

// EventKind classifies announcements.
type EventKind string

const (
	EventPhase     EventKind = "phase"
	EventCountdown EventKind = "countdown"
	EventCue       EventKind = "cue"
	EventPaused    EventKind = "paused"
	EventResumed   EventKind = "resumed"
	EventComplete  EventKind = "complete"
)

// Event is one announcement. Announcers only observe; they cannot alter
// the progression.
type Event struct {
	Kind          EventKind
	Phase         Phase
	ExerciseIndex int
	SetIndex      int
	Exercise      string
	Remaining     time.Duration
}

// Announcer receives playback events, e.g. a voice prompt sink.
// Implementations must not block; wrap slow sinks with an async adapter.
type Announcer interface {
	Announce(ctx context.Context, ev Event)
}

// RecordSink accepts the record of a completed session.
type RecordSink interface {
	Submit(ctx context.Context, rec model.WorkoutSessionRecord) error
}

// MetricSource emits live exercise samples, e.g. from pose estimation.
// The channel is closed when the source ends.
type MetricSource interface {
	Samples() <-chan model.MetricSample
}

// Running is the metric snapshot accumulated during playback.
type Running struct {
	TotalReps   int
	SetReps     int
	AverageForm float64
	PeakForm    float64
	Tempo       float64
	Fatigue     float64
	FormSamples int
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Phase         Phase
	ExerciseIndex int
	SetIndex      int
	Remaining     time.Duration
	Elapsed       time.Duration
	Paused        bool
	Running       Running
}

type nopAnnouncer struct{}

func (nopAnnouncer) Announce(context.Context, Event) {}
