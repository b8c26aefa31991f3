package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/okian/pulse/internal/adapters/library"
	"github.com/okian/pulse/internal/adapters/repository"
	service "github.com/okian/pulse/internal/app"
	"github.com/okian/pulse/internal/domain/composer"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/playback"
	"github.com/okian/pulse/internal/domain/profile"
	"github.com/okian/pulse/internal/domain/scoring"
	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// warnLogger keeps the messages and fields of Warn calls.
type warnLogger struct {
	mu    sync.Mutex
	warns []string
	attrs []map[string]any
}

func (w *warnLogger) Warn(_ context.Context, msg string, fields ...logger.Field) {
	w.mu.Lock()
	defer w.mu.Unlock()
	attrs := make(map[string]any, len(fields))
	for _, f := range fields {
		attrs[f.Key] = f.Value
	}
	w.warns = append(w.warns, msg)
	w.attrs = append(w.attrs, attrs)
}
func (w *warnLogger) Info(context.Context, string, ...logger.Field)  {}
func (w *warnLogger) Error(context.Context, string, ...logger.Field) {}
func (w *warnLogger) Debug(context.Context, string, ...logger.Field) {}
func (w *warnLogger) Fatal(context.Context, string, ...logger.Field) {}
func (w *warnLogger) Named(string) logger.Logger                     { return w }

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var (
	now     = time.Date(2026, 5, 13, 18, 0, 0, 0, time.UTC)
	athlete = model.AthleteProfile{ID: "athlete-1", Name: "Sam", Age: 30, Tier: types.TierIntermediate}
)

func newService(t *testing.T, opts ...service.Option) (*service.Service, *repository.MemoryStore) {
	t.Helper()
	lib, err := library.Default()
	if err != nil {
		t.Fatalf("default library: %v", err)
	}
	store := repository.NewMemoryStore()
	opts = append([]service.Option{service.WithClock(func() time.Time { return now })}, opts...)
	return service.New(store, lib, opts...), store
}

func rawResults() []model.AssessmentResult {
	return []model.AssessmentResult{
		{ID: "h", TestType: types.TestHeight, RawMeasurement: 170, Timestamp: now.Add(-time.Hour)},
		{ID: "s", TestType: types.TestSitUps, RawMeasurement: 20, Timestamp: now.Add(-time.Hour)},
		{ID: "bad", TestType: types.TestHeight, RawMeasurement: 900, Timestamp: now},
	}
}

// play ticks c until it finishes. Exercises start on their own after
// the instruction ticks, so no Begin call is needed.
func play(ctx context.Context, c *playback.Controller) {
	for i := 0; i < 100_000; i++ {
		select {
		case <-c.Done():
			return
		default:
			c.Tick(ctx)
		}
	}
}

func TestService_Assess(t *testing.T) {
	Convey("Given a service", t, func() {
		svc, _ := newService(t)
		ctx := context.Background()

		Convey("When assessing raw results with one out-of-range value", func() {
			a, err := svc.Assess(ctx, athlete, rawResults())

			Convey("Then the valid results are scored and the bad one rejected", func() {
				So(err, ShouldBeNil)
				So(a.Results, ShouldHaveLength, 2)
				So(a.Results[0].Score, ShouldEqual, 60)
				So(a.Results[0].AthleteID, ShouldEqual, "athlete-1")
				So(a.Results[1].Score, ShouldEqual, 45)

				rejected := multierr.Errors(a.Rejected)
				So(rejected, ShouldHaveLength, 1)
				So(errors.Is(rejected[0], scoring.ErrMeasurementOutOfRange), ShouldBeTrue)
			})

			Convey("Then the profile ranks the weakest category first", func() {
				So(a.Profile.Ranked, ShouldHaveLength, 2)
				So(a.Profile.Ranked[0].Category, ShouldEqual, types.CategorySitUps)
				So(a.Profile.Ranked[1].Category, ShouldEqual, types.CategoryHeight)
				So(a.Profile.FocusAreas, ShouldResemble, []types.Category{types.CategorySitUps, types.CategoryHeight})
			})
		})

		Convey("When a result is rejected", func() {
			log := &warnLogger{}
			svc, _ := newService(t, service.WithLogger(log))
			_, err := svc.Assess(ctx, athlete, rawResults())

			Convey("Then the rejection is logged with the result and test type", func() {
				So(err, ShouldBeNil)
				So(log.warns, ShouldHaveLength, 1)
				So(log.attrs[0]["result_id"], ShouldEqual, "bad")
				So(log.attrs[0]["test_type"], ShouldEqual, string(types.TestHeight))
				So(errors.Is(log.attrs[0]["error"].(error), scoring.ErrMeasurementOutOfRange), ShouldBeTrue)
			})
		})

		Convey("When only one test type is valid", func() {
			_, err := svc.Assess(ctx, athlete, rawResults()[:1])

			Convey("Then the athlete is told to take more assessments", func() {
				So(errors.Is(err, profile.ErrInsufficientData), ShouldBeTrue)
				So(service.Guidance(err), ShouldContainSubstring, "more assessments")
			})
		})

		Convey("When the athlete has no age", func() {
			_, err := svc.Assess(ctx, model.AthleteProfile{ID: "athlete-1"}, rawResults())

			Convey("Then the profile is reported incomplete", func() {
				So(errors.Is(err, service.ErrIncompleteProfile), ShouldBeTrue)
				So(service.Guidance(err), ShouldContainSubstring, "Complete your profile")
			})
		})
	})
}

func TestService_SessionLifecycle(t *testing.T) {
	Convey("Given a started service and a composed session", t, func() {
		svc, store := newService(t, service.WithRetryInterval(10*time.Millisecond))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		a, err := svc.Assess(ctx, athlete, rawResults())
		So(err, ShouldBeNil)
		session, err := svc.Compose(ctx, a.Profile, athlete, composer.Constraints{DurationMinutes: 10})
		So(err, ShouldBeNil)
		So(len(session.Exercises), ShouldBeGreaterThan, 1)

		c, err := svc.StartSession(ctx, session, nil)
		So(err, ShouldBeNil)

		Convey("When a second session is started while one is active", func() {
			_, err := svc.StartSession(ctx, session, nil)

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrSessionActive), ShouldBeTrue)
				So(service.Guidance(err), ShouldNotBeEmpty)
				active, ok := svc.Active()
				So(ok, ShouldBeTrue)
				So(active, ShouldEqual, c)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})

		Convey("When the session is played to completion", func() {
			play(ctx, c)
			rec, ok := c.Record()
			So(ok, ShouldBeTrue)

			Convey("Then metrics include the record straight away", func() {
				m, err := svc.Metrics(ctx, athlete.ID)
				So(err, ShouldBeNil)
				So(m.TotalWorkouts, ShouldEqual, 1)
				So(m.CurrentStreak, ShouldEqual, 1)
				So(m.RecentSessions[0].ID, ShouldEqual, rec.ID)

				_, ok := svc.Active()
				So(ok, ShouldBeFalse)

				Convey("And a new session may start", func() {
					_, err := svc.StartSession(ctx, session, nil)
					So(err, ShouldBeNil)
					So(svc.Stop(ctx), ShouldBeNil)
				})
			})

			Convey("Then deleting it removes it from metrics and the store", func() {
				So(svc.DeleteSession(ctx, rec.ID), ShouldBeNil)
				So(svc.DeleteSession(ctx, rec.ID), ShouldBeNil)
				m, err := svc.Metrics(ctx, athlete.ID)
				So(err, ShouldBeNil)
				So(m.TotalWorkouts, ShouldEqual, 0)
				So(svc.Stop(ctx), ShouldBeNil)
				So(store.Len(), ShouldEqual, 0)
			})

			Convey("Then stopping the service persists it", func() {
				So(svc.Stop(ctx), ShouldBeNil)
				So(store.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the service stops mid-session", func() {
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then the session is abandoned and nothing is saved", func() {
				So(c.State().Phase, ShouldEqual, playback.PhaseAbandoned)
				So(store.Len(), ShouldEqual, 0)
				So(errors.Is(svc.Start(ctx), service.ErrStopped), ShouldBeTrue)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a service with manual exercise starts", t, func() {
		svc, _ := newService(t, service.WithInstructionTicks(0))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		a, err := svc.Assess(ctx, athlete, rawResults())
		So(err, ShouldBeNil)
		session, err := svc.Compose(ctx, a.Profile, athlete, composer.Constraints{DurationMinutes: 10})
		So(err, ShouldBeNil)
		c, err := svc.StartSession(ctx, session, nil)
		So(err, ShouldBeNil)

		Convey("When ticking without Begin", func() {
			for i := 0; i < 50; i++ {
				c.Tick(ctx)
			}

			Convey("Then the first exercise waits in instructions", func() {
				So(c.State().Phase, ShouldEqual, playback.PhaseInstructions)
				So(c.State().ExerciseIndex, ShouldEqual, 0)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})

	Convey("A session cannot start before the service", t, func() {
		svc, _ := newService(t)
		_, err := svc.StartSession(context.Background(), model.TrainingSession{}, nil)
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
	})
}

func TestService_RecordsAndStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, store := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When an external record is submitted", func() {
			rec := model.WorkoutSessionRecord{ID: "ext-1", AthleteID: athlete.ID, ExerciseType: "SIT_UPS", Reps: 30, FormScore: 80, Date: now}
			So(svc.RecordSession(ctx, rec), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it is persisted", func() {
				So(store.Len(), ShouldEqual, 1)
			})
		})

		Convey("When a record has no athlete", func() {
			err := svc.RecordSession(ctx, model.WorkoutSessionRecord{ID: "x"})
			So(err, ShouldNotBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
		})

		Convey("When reading stats", func() {
			stats := svc.Stats()
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then the pipeline state is reported", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["session_active"], ShouldEqual, false)
				So(stats["queue_capacity"], ShouldEqual, 256)
				So(svc.Stats()["started"], ShouldEqual, false)
			})
		})

		Convey("When folding performance samples", func() {
			records, trends := svc.Performance([]model.PerformanceSample{
				{Metric: "SPRINT_30M", Value: 5.2, Date: now.AddDate(0, 0, -40)},
				{Metric: "SPRINT_30M", Value: 5.0, Date: now},
			})
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then lower sprint times count as better", func() {
				So(records["SPRINT_30M"].Value, ShouldEqual, 5.0)
				So(trends["SPRINT_30M"].Available, ShouldBeTrue)
			})
		})
	})
}

func TestGuidance(t *testing.T) {
	Convey("Guidance covers each recoverable error", t, func() {
		So(service.Guidance(nil), ShouldEqual, "")
		So(service.Guidance(errors.New("boom")), ShouldEqual, "")
		So(service.Guidance(&composer.NoEligibleExercisesError{}), ShouldContainSubstring, "equipment")
		So(service.Guidance(&scoring.MeasurementOutOfRangeError{}), ShouldNotBeEmpty)
		So(service.Guidance(&repository.SaveFailedError{ID: "r"}), ShouldContainSubstring, "sync later")
		So(service.Guidance(&playback.InvalidSessionError{Exercise: -1}), ShouldNotBeEmpty)
	})
}
