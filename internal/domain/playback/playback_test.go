package playback_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/playback"
	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

var fixedNow = time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []playback.Event
}

func (r *recorder) Announce(_ context.Context, ev playback.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds(kind playback.EventKind) []playback.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []playback.Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type sink struct {
	mu      sync.Mutex
	err     error
	records []model.WorkoutSessionRecord
}

func (s *sink) Submit(_ context.Context, rec model.WorkoutSessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.err
}

type chanSource chan model.MetricSample

func (c chanSource) Samples() <-chan model.MetricSample { return c }

func ints(v int) *int { return &v }
func floats(v float64) *float64 { return &v }

func exercise(name string, sets int, d, rest time.Duration, reps int) model.TrainingExercise {
	return model.TrainingExercise{ExerciseID: name, Name: name, Sets: sets, Duration: d, RestBetweenSets: rest, Reps: reps}
}

func session(exs ...model.TrainingExercise) model.TrainingSession {
	return model.TrainingSession{ID: "s-1", AthleteID: "a-1", FocusCategory: types.CategorySitUps, Exercises: exs}
}

func ticks(ctx context.Context, c *playback.Controller, n int) {
	for i := 0; i < n; i++ {
		c.Tick(ctx)
	}
}

func TestNew(t *testing.T) {
	Convey("Given sessions that cannot be played", t, func() {
		cases := []model.TrainingSession{
			session(),
			session(exercise("a", 0, time.Minute, 0, 0)),
			session(exercise("a", 1, 0, 0, 0)),
			session(exercise("a", 1, time.Minute, 0, -1)),
			session(exercise("a", 2, time.Minute, -time.Second, 0)),
		}
		for _, s := range cases {
			_, err := playback.New(s)
			So(errors.Is(err, playback.ErrInvalidSession), ShouldBeTrue)
			var ise *playback.InvalidSessionError
			So(errors.As(err, &ise), ShouldBeTrue)
		}
	})

	Convey("Given a valid session", t, func() {
		c, err := playback.New(session(exercise("a", 1, time.Minute, 0, 0)))
		So(err, ShouldBeNil)
		So(c.State().Phase, ShouldEqual, playback.PhaseInstructions)
		_, ok := c.Record()
		So(ok, ShouldBeFalse)
	})
}

func TestSetProgression(t *testing.T) {
	Convey("Given a three-set exercise with ten seconds of rest", t, func() {
		ctx := context.Background()
		c, err := playback.New(session(
			exercise("plank", 3, 5*time.Second, 10*time.Second, 0),
			exercise("bridge", 1, 5*time.Second, 0, 0),
		))
		So(err, ShouldBeNil)
		So(c.Begin(ctx), ShouldBeNil)

		Convey("When the first set runs out", func() {
			ticks(ctx, c, 5)
			st := c.State()

			Convey("Then it rests after set zero", func() {
				So(st.Phase, ShouldEqual, playback.PhaseResting)
				So(st.ExerciseIndex, ShouldEqual, 0)
				So(st.SetIndex, ShouldEqual, 0)
				So(st.Remaining, ShouldEqual, 10*time.Second)
			})

			Convey("And the rest leads to set one, not the next exercise", func() {
				ticks(ctx, c, 9)
				So(c.State().Phase, ShouldEqual, playback.PhaseResting)
				c.Tick(ctx)
				st := c.State()
				So(st.Phase, ShouldEqual, playback.PhaseActive)
				So(st.ExerciseIndex, ShouldEqual, 0)
				So(st.SetIndex, ShouldEqual, 1)
				So(st.Remaining, ShouldEqual, 5*time.Second)
			})
		})

		Convey("When every set finishes", func() {
			ticks(ctx, c, 5+10+5+10+5)
			st := c.State()

			Convey("Then the next exercise starts with instructions", func() {
				So(st.Phase, ShouldEqual, playback.PhaseInstructions)
				So(st.ExerciseIndex, ShouldEqual, 1)
				So(st.Elapsed, ShouldEqual, 35*time.Second)
			})
		})

		Convey("When begin is called twice", func() {
			So(errors.Is(c.Begin(ctx), playback.ErrInvalidTransition), ShouldBeTrue)
		})
	})
}

func TestAutoBegin(t *testing.T) {
	Convey("Given three exercises that start after two instruction ticks", t, func() {
		ctx := context.Background()
		s := &sink{}
		c, err := playback.New(session(
			exercise("plank", 2, 5*time.Second, 3*time.Second, 0),
			exercise("bridge", 1, 4*time.Second, 0, 0),
			exercise("stretch", 1, 3*time.Second, 0, 0),
		), playback.WithAutoBegin(2), playback.WithRecordSink(s), playback.WithClock(func() time.Time { return fixedNow }))
		So(err, ShouldBeNil)

		Convey("When only Tick is called", func() {
			c.Tick(ctx)
			So(c.State().Phase, ShouldEqual, playback.PhaseInstructions)
			c.Tick(ctx)
			So(c.State().Phase, ShouldEqual, playback.PhaseActive)

			// Plank 5+3+5, bridge 2+4, stretch 2 plus two of its three
			// active seconds.
			ticks(ctx, c, 13+2+4+2+2)
			So(c.State().Phase, ShouldEqual, playback.PhaseActive)
			So(c.State().ExerciseIndex, ShouldEqual, 2)
			c.Tick(ctx)

			Convey("Then every exercise plays and the session completes once", func() {
				So(c.State().Phase, ShouldEqual, playback.PhaseComplete)
				<-c.Done()
				rec, ok := c.Record()
				So(ok, ShouldBeTrue)
				So(rec.Duration, ShouldEqual, 20*time.Second)

				ticks(ctx, c, 10)
				s.mu.Lock()
				defer s.mu.Unlock()
				So(s.records, ShouldHaveLength, 1)
				So(s.records[0].ID, ShouldEqual, rec.ID)
			})
		})
	})
}

func TestCompletion(t *testing.T) {
	Convey("Given a session with a record sink", t, func() {
		ctx := context.Background()
		s := &sink{}
		var finished []playback.Snapshot
		c, err := playback.New(session(exercise("crunch", 1, 4*time.Second, 0, 0)),
			playback.WithRecordSink(s),
			playback.WithClock(func() time.Time { return fixedNow }),
			playback.WithOnFinish(func(snap playback.Snapshot, _ *model.WorkoutSessionRecord) {
				finished = append(finished, snap)
			}),
		)
		So(err, ShouldBeNil)
		So(c.Begin(ctx), ShouldBeNil)

		c.Offer(model.MetricSample{Reps: ints(4), FormScore: floats(80)})
		c.Tick(ctx)
		c.Offer(model.MetricSample{Reps: ints(3), FormScore: floats(90), Tempo: floats(1.5)})
		ticks(ctx, c, 3)

		Convey("Then a record is built from the running snapshot", func() {
			So(c.State().Phase, ShouldEqual, playback.PhaseComplete)
			rec, ok := c.Record()
			So(ok, ShouldBeTrue)
			So(rec.ID, ShouldNotBeEmpty)
			So(rec.AthleteID, ShouldEqual, "a-1")
			So(rec.SessionID, ShouldEqual, "s-1")
			So(rec.ExerciseType, ShouldEqual, string(types.CategorySitUps))
			So(rec.Reps, ShouldEqual, 7)
			So(rec.FormScore, ShouldEqual, 85)
			So(rec.PeakFormScore, ShouldEqual, 90)
			So(rec.Duration, ShouldEqual, 4*time.Second)
			So(rec.Date, ShouldEqual, fixedNow)
			So(rec.Notes, ShouldEqual, "completed 1 of 1 exercises")
			So(c.State().Running.Tempo, ShouldEqual, 1.5)

			So(len(s.records), ShouldEqual, 1)
			So(s.records[0].ID, ShouldEqual, rec.ID)
			So(len(finished), ShouldEqual, 1)

			select {
			case <-c.Done():
			default:
				t.Fatal("done channel not closed")
			}
		})

		Convey("And further actions are rejected or ignored", func() {
			So(errors.Is(c.Skip(ctx), playback.ErrFinished), ShouldBeTrue)
			So(errors.Is(c.Cancel(ctx), playback.ErrFinished), ShouldBeTrue)
			c.Tick(ctx)
			So(c.State().Phase, ShouldEqual, playback.PhaseComplete)
		})
	})

	Convey("Given a sink that fails", t, func() {
		ctx := context.Background()
		s := &sink{err: errors.New("disk full")}
		c, err := playback.New(session(exercise("crunch", 1, time.Second, 0, 0)), playback.WithRecordSink(s))
		So(err, ShouldBeNil)
		So(c.Begin(ctx), ShouldBeNil)
		c.Tick(ctx)

		Convey("Then the session stays complete and the record is kept", func() {
			So(c.State().Phase, ShouldEqual, playback.PhaseComplete)
			_, ok := c.Record()
			So(ok, ShouldBeTrue)
			So(len(s.records), ShouldEqual, 1)
		})
	})
}

func TestRepTarget(t *testing.T) {
	Convey("Given a rep-based exercise", t, func() {
		ctx := context.Background()
		c, err := playback.New(session(exercise("situps", 2, time.Minute, 10*time.Second, 5)))
		So(err, ShouldBeNil)
		So(c.Begin(ctx), ShouldBeNil)

		Convey("When reps arrive below target", func() {
			c.Offer(model.MetricSample{Reps: ints(3)})
			c.Tick(ctx)
			So(c.State().Phase, ShouldEqual, playback.PhaseActive)
			So(c.State().Running.SetReps, ShouldEqual, 3)

			Convey("And then reach the target", func() {
				c.Offer(model.MetricSample{Reps: ints(1)})
				c.Offer(model.MetricSample{Reps: ints(1)})
				c.Tick(ctx)

				Convey("Then the set ends before its timer", func() {
					st := c.State()
					So(st.Phase, ShouldEqual, playback.PhaseResting)
					So(st.SetIndex, ShouldEqual, 0)
					So(st.Running.TotalReps, ShouldEqual, 5)
				})
			})
		})

		Convey("When samples are offered they wait for the next tick", func() {
			c.Offer(model.MetricSample{Reps: ints(9)})
			So(c.State().Running.TotalReps, ShouldEqual, 0)
		})
	})
}

func TestPauseSkipCancel(t *testing.T) {
	Convey("Given an active exercise", t, func() {
		ctx := context.Background()
		rec := &recorder{}
		c, err := playback.New(session(
			exercise("a", 3, 30*time.Second, 10*time.Second, 0),
			exercise("b", 1, 30*time.Second, 0, 0),
		), playback.WithAnnouncer(rec))
		So(err, ShouldBeNil)
		So(c.Begin(ctx), ShouldBeNil)
		ticks(ctx, c, 5)

		Convey("When paused", func() {
			c.Pause(ctx)
			ticks(ctx, c, 20)
			st := c.State()

			Convey("Then ticks are discarded", func() {
				So(st.Paused, ShouldBeTrue)
				So(st.Remaining, ShouldEqual, 25*time.Second)
				So(st.Elapsed, ShouldEqual, 5*time.Second)
				So(len(rec.kinds(playback.EventPaused)), ShouldEqual, 1)
			})

			Convey("And resume continues from the same point", func() {
				c.Resume(ctx)
				c.Tick(ctx)
				So(c.State().Remaining, ShouldEqual, 24*time.Second)
				So(len(rec.kinds(playback.EventResumed)), ShouldEqual, 1)
			})
		})

		Convey("When skipped", func() {
			So(c.Skip(ctx), ShouldBeNil)
			st := c.State()

			Convey("Then it moves to the next exercise, not the next set", func() {
				So(st.Phase, ShouldEqual, playback.PhaseInstructions)
				So(st.ExerciseIndex, ShouldEqual, 1)
				So(st.SetIndex, ShouldEqual, 0)
			})

			Convey("And skipping the last exercise completes the session", func() {
				So(c.Skip(ctx), ShouldBeNil)
				So(c.State().Phase, ShouldEqual, playback.PhaseComplete)
				r, ok := c.Record()
				So(ok, ShouldBeTrue)
				So(r.Notes, ShouldEqual, "completed 0 of 2 exercises, skipped 2")
			})
		})

		Convey("When cancelled", func() {
			So(c.Cancel(ctx), ShouldBeNil)

			Convey("Then the session is abandoned without a record", func() {
				So(c.State().Phase, ShouldEqual, playback.PhaseAbandoned)
				_, ok := c.Record()
				So(ok, ShouldBeFalse)
				<-c.Done()
			})
		})
	})
}

func TestAnnouncements(t *testing.T) {
	Convey("Given a forty second set", t, func() {
		ctx := context.Background()
		rec := &recorder{}
		c, err := playback.New(session(exercise("a", 1, 40*time.Second, 0, 0)), playback.WithAnnouncer(rec))
		So(err, ShouldBeNil)
		So(c.Begin(ctx), ShouldBeNil)
		ticks(ctx, c, 40)

		Convey("Then the countdown fires at ten, three, two and one seconds", func() {
			var at []time.Duration
			for _, ev := range rec.kinds(playback.EventCountdown) {
				at = append(at, ev.Remaining)
			}
			So(at, ShouldResemble, []time.Duration{10 * time.Second, 3 * time.Second, 2 * time.Second, time.Second})
		})

		Convey("And one motivational cue fires at the half-way point", func() {
			cues := rec.kinds(playback.EventCue)
			So(len(cues), ShouldEqual, 1)
			So(cues[0].Remaining, ShouldEqual, 20*time.Second)
		})

		Convey("And phase changes and completion are announced", func() {
			So(len(rec.kinds(playback.EventPhase)), ShouldEqual, 2)
			So(len(rec.kinds(playback.EventComplete)), ShouldEqual, 1)
		})
	})
}

func TestDrive(t *testing.T) {
	Convey("Given a short session with auto begin and a metric source", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		c, err := playback.New(session(exercise("a", 2, 3*time.Second, 5*time.Second, 0)),
			playback.WithAutoBegin(1))
		So(err, ShouldBeNil)

		src := make(chanSource, 2)
		src <- model.MetricSample{Reps: ints(2), FormScore: floats(70)}
		src <- model.MetricSample{Reps: ints(2)}
		close(src)
		stopped := playback.Attach(ctx, c, src)
		<-stopped

		Convey("When driven with a fast ticker", func() {
			err := playback.Drive(ctx, c, time.Millisecond)

			Convey("Then it runs to completion", func() {
				So(err, ShouldBeNil)
				rec, ok := c.Record()
				So(ok, ShouldBeTrue)
				So(rec.Reps, ShouldEqual, 4)
				So(rec.Duration, ShouldEqual, 11*time.Second)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		c, err := playback.New(session(exercise("a", 1, time.Hour, 0, 0)))
		So(err, ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = playback.Drive(ctx, c, time.Millisecond)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
