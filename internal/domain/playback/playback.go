// Package playback drives one training session exercise by exercise and
// set by set.
//
// The hosting layer calls Tick once per second. All transitions happen
// inside Tick, Begin, Skip and Cancel under the controller lock, so no two
// transitions race. Live metric samples may be offered from any goroutine;
// they are buffered and only applied at the next tick. Announcements, the
// record hand-off and the finish callback run after the lock is released.
package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

// TickStep is the session time that one tick represents.
const TickStep = time.Second

const (
	defaultCountdownFrom = 10 * time.Second
	finalCountdown       = 3 * time.Second
)

// Controller is the playback state machine for one session.
type Controller struct {
	mu sync.Mutex

	session model.TrainingSession

	phase     Phase
	exercise  int
	set       int
	remaining time.Duration
	elapsed   time.Duration
	paused    bool

	instructionTicks int
	buffered         []model.MetricSample
	running          Running
	formSum          float64
	completed        int
	skipped          int
	record           *model.WorkoutSessionRecord
	done             chan struct{}

	announcer     Announcer
	sink          RecordSink
	onFinish      func(Snapshot, *model.WorkoutSessionRecord)
	now           func() time.Time
	autoBegin     int
	countdownFrom time.Duration
	log           logger.Logger
}

// effects collects what must run after the lock is released.
type effects struct {
	events   []Event
	finished bool
}

// New validates session and returns a controller in Instructions(0).
func New(session model.TrainingSession, opts ...Option) (*Controller, error) {
	if err := Validate(session); err != nil {
		return nil, err
	}
	c := &Controller{
		session:       session,
		phase:         PhaseInstructions,
		done:          make(chan struct{}),
		announcer:     nopAnnouncer{},
		now:           time.Now,
		countdownFrom: defaultCountdownFrom,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Get().Named("playback")
	}
	return c, nil
}

// Validate rejects sessions that cannot be played to completion.
func Validate(s model.TrainingSession) error {
	if len(s.Exercises) == 0 {
		return &InvalidSessionError{Exercise: -1, Reason: "no exercises"}
	}
	for i, e := range s.Exercises {
		switch {
		case e.Sets <= 0:
			return &InvalidSessionError{Exercise: i, Reason: "sets must be positive"}
		case e.Duration <= 0:
			return &InvalidSessionError{Exercise: i, Reason: "duration must be positive"}
		case e.Reps < 0:
			return &InvalidSessionError{Exercise: i, Reason: "reps must not be negative"}
		case e.RestBetweenSets < 0:
			return &InvalidSessionError{Exercise: i, Reason: "rest must not be negative"}
		}
	}
	return nil
}

// Session returns the session being played.
func (c *Controller) Session() model.TrainingSession { return c.session }

// Done is closed once the controller reaches a terminal phase.
func (c *Controller) Done() <-chan struct{} { return c.done }

// State returns a snapshot of the current state.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Record returns the completion record, once one exists. A failed hand-off
// to the sink does not clear it.
func (c *Controller) Record() (model.WorkoutSessionRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.record == nil {
		return model.WorkoutSessionRecord{}, false
	}
	return *c.record, true
}

// Offer buffers a live sample for the next tick. Samples offered after the
// session finished are ignored.
func (c *Controller) Offer(sample model.MetricSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase.Terminal() {
		return
	}
	c.buffered = append(c.buffered, sample)
}

// Begin starts the current exercise's first set.
func (c *Controller) Begin(ctx context.Context) error {
	c.mu.Lock()
	var fx effects
	err := c.begin(&fx)
	c.mu.Unlock()
	c.apply(ctx, fx)
	return err
}

// Tick advances session time by one TickStep. Ticks while paused, or
// outside Active and Resting, have no effect on the progression.
func (c *Controller) Tick(ctx context.Context) {
	c.mu.Lock()
	var fx effects
	c.tick(&fx)
	c.mu.Unlock()
	c.apply(ctx, fx)
}

// Skip abandons the rest of the current exercise and moves to the next one.
func (c *Controller) Skip(ctx context.Context) error {
	c.mu.Lock()
	if c.phase.Terminal() {
		c.mu.Unlock()
		return ErrFinished
	}
	var fx effects
	c.skipped++
	c.nextExercise(&fx)
	c.mu.Unlock()
	c.apply(ctx, fx)
	return nil
}

// Pause freezes the countdown. Only Active and Resting can be paused.
func (c *Controller) Pause(ctx context.Context) {
	c.mu.Lock()
	var fx effects
	if (c.phase == PhaseActive || c.phase == PhaseResting) && !c.paused {
		c.paused = true
		fx.events = append(fx.events, c.event(EventPaused))
	}
	c.mu.Unlock()
	c.apply(ctx, fx)
}

// Resume unfreezes a paused countdown.
func (c *Controller) Resume(ctx context.Context) {
	c.mu.Lock()
	var fx effects
	if c.paused && !c.phase.Terminal() {
		c.paused = false
		fx.events = append(fx.events, c.event(EventResumed))
	}
	c.mu.Unlock()
	c.apply(ctx, fx)
}

// Cancel abandons the session. No record is produced.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.phase.Terminal() {
		c.mu.Unlock()
		return ErrFinished
	}
	var fx effects
	c.buffered = nil
	c.paused = false
	c.enter(&fx, PhaseAbandoned)
	fx.finished = true
	metrics.RecordSessionAbandoned()
	c.mu.Unlock()
	c.apply(ctx, fx)
	return nil
}

func (c *Controller) begin(fx *effects) error {
	if c.phase != PhaseInstructions {
		return fmt.Errorf("%w: begin from %s", ErrInvalidTransition, c.phase)
	}
	c.set = 0
	c.startActive(fx)
	return nil
}

func (c *Controller) tick(fx *effects) {
	switch c.phase {
	case PhaseInstructions:
		if c.autoBegin > 0 {
			c.instructionTicks++
			if c.instructionTicks >= c.autoBegin {
				_ = c.begin(fx)
			}
		}
		return
	case PhaseActive, PhaseResting:
	case PhaseComplete, PhaseAbandoned:
		return
	}
	if c.paused {
		return
	}

	c.merge()
	c.elapsed += TickStep
	ex := c.session.Exercises[c.exercise]

	if c.phase == PhaseActive && ex.Reps > 0 && c.running.SetReps >= ex.Reps {
		c.setDone(fx)
		return
	}

	c.remaining -= TickStep
	if c.remaining <= 0 {
		c.remaining = 0
		if c.phase == PhaseActive {
			c.setDone(fx)
		} else {
			c.set++
			c.startActive(fx)
		}
		return
	}

	if c.remaining == c.countdownFrom || c.remaining <= finalCountdown {
		fx.events = append(fx.events, c.event(EventCountdown))
	}
	if c.phase == PhaseActive {
		half := (ex.Duration / 2).Truncate(TickStep)
		if half > c.countdownFrom && c.remaining == half {
			fx.events = append(fx.events, c.event(EventCue))
		}
	}
}

// setDone moves from a finished set to the rest, the next set or the next
// exercise.
func (c *Controller) setDone(fx *effects) {
	ex := c.session.Exercises[c.exercise]
	if c.set >= ex.Sets-1 {
		c.completed++
		c.nextExercise(fx)
		return
	}
	if ex.RestBetweenSets > 0 {
		c.remaining = ex.RestBetweenSets
		c.enter(fx, PhaseResting)
		return
	}
	c.set++
	c.startActive(fx)
}

func (c *Controller) startActive(fx *effects) {
	c.remaining = c.session.Exercises[c.exercise].Duration
	c.running.SetReps = 0
	c.enter(fx, PhaseActive)
}

func (c *Controller) nextExercise(fx *effects) {
	c.paused = false
	c.set = 0
	c.remaining = 0
	c.instructionTicks = 0
	c.running.SetReps = 0
	c.exercise++
	if c.exercise >= len(c.session.Exercises) {
		c.exercise = len(c.session.Exercises) - 1
		c.finish(fx)
		return
	}
	c.enter(fx, PhaseInstructions)
}

func (c *Controller) finish(fx *effects) {
	c.merge()
	c.enter(fx, PhaseComplete)
	rec := c.buildRecord()
	c.record = &rec
	fx.finished = true
	fx.events = append(fx.events, c.event(EventComplete))
	metrics.RecordSessionCompleted()
}

func (c *Controller) enter(fx *effects, p Phase) {
	c.phase = p
	metrics.RecordPlaybackTransition(string(p))
	fx.events = append(fx.events, c.event(EventPhase))
}

// merge folds buffered samples into the running snapshot. Rep deltas are
// summed; tempo and fatigue keep the latest value.
func (c *Controller) merge() {
	for _, s := range c.buffered {
		if s.Reps != nil && *s.Reps > 0 {
			c.running.TotalReps += *s.Reps
			c.running.SetReps += *s.Reps
		}
		if s.FormScore != nil {
			f := *s.FormScore
			c.formSum += f
			c.running.FormSamples++
			c.running.AverageForm = c.formSum / float64(c.running.FormSamples)
			if f > c.running.PeakForm {
				c.running.PeakForm = f
			}
		}
		if s.Tempo != nil {
			c.running.Tempo = *s.Tempo
		}
		if s.FatigueLevel != nil {
			c.running.Fatigue = *s.FatigueLevel
		}
	}
	c.buffered = c.buffered[:0]
}

func (c *Controller) buildRecord() model.WorkoutSessionRecord {
	total := len(c.session.Exercises)
	notes := fmt.Sprintf("completed %d of %d exercises", c.completed, total)
	if c.skipped > 0 {
		notes += fmt.Sprintf(", skipped %d", c.skipped)
	}
	return model.WorkoutSessionRecord{
		ID:            uuid.NewString(),
		AthleteID:     c.session.AthleteID,
		SessionID:     c.session.ID,
		ExerciseType:  string(c.session.FocusCategory),
		Reps:          c.running.TotalReps,
		FormScore:     c.running.AverageForm,
		PeakFormScore: c.running.PeakForm,
		Duration:      c.elapsed,
		Date:          c.now(),
		Notes:         notes,
	}
}

func (c *Controller) event(kind EventKind) Event {
	return Event{
		Kind:          kind,
		Phase:         c.phase,
		ExerciseIndex: c.exercise,
		SetIndex:      c.set,
		Exercise:      c.session.Exercises[c.exercise].Name,
		Remaining:     c.remaining,
	}
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		Phase:         c.phase,
		ExerciseIndex: c.exercise,
		SetIndex:      c.set,
		Remaining:     c.remaining,
		Elapsed:       c.elapsed,
		Paused:        c.paused,
		Running:       c.running,
	}
}

// apply runs side effects outside the lock.
func (c *Controller) apply(ctx context.Context, fx effects) {
	for _, ev := range fx.events {
		c.announcer.Announce(ctx, ev)
	}
	if !fx.finished {
		return
	}

	c.mu.Lock()
	snap := c.snapshot()
	var rec *model.WorkoutSessionRecord
	if c.record != nil {
		r := *c.record
		rec = &r
	}
	c.mu.Unlock()

	if rec != nil && c.sink != nil {
		if err := c.sink.Submit(ctx, *rec); err != nil {
			c.log.Error(ctx, "handing off workout record failed",
				logger.String("record_id", rec.ID),
				logger.Error(err))
		}
	}
	if c.onFinish != nil {
		c.onFinish(snap, rec)
	}
	close(c.done)
}
