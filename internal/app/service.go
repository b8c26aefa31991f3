// Package service wires the training engine together: scoring, profiling,
// composition, playback and progress over a record store.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/okian/pulse/internal/adapters/mq/queue"
	"github.com/okian/pulse/internal/adapters/mq/worker"
	"github.com/okian/pulse/internal/adapters/repository"
	"github.com/okian/pulse/internal/domain/composer"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/playback"
	"github.com/okian/pulse/internal/domain/profile"
	"github.com/okian/pulse/internal/domain/progress"
	"github.com/okian/pulse/internal/domain/scoring"
	"github.com/okian/pulse/pkg/errkind"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

// Assessment is the outcome of scoring a batch of raw results.
type Assessment struct {
	// Results are the accepted results with scores filled in.
	Results []model.AssessmentResult
	// Rejected combines one error per refused measurement; split it with
	// multierr.Errors.
	Rejected error
	Profile  model.WeaknessProfile
}

// Service owns the engine components and the persistence pipeline.
type Service struct {
	mu sync.Mutex

	store      repository.RecordStore
	library    composer.Library
	normalizer *scoring.Normalizer
	builder    *profile.Builder
	composer   *composer.Composer
	tracker    *progress.Tracker
	queue      *queue.InMemoryQueue
	persister  *worker.Persister

	// Configuration
	queueSize        int
	retryInterval    time.Duration
	focusK           int
	minTestTypes     int
	strongThreshold  float64
	countdownFrom    int
	instructionTicks int
	location         *time.Location
	recentSessions   int
	announcer        playback.Announcer
	now              func() time.Time

	// State
	started bool
	stopped bool
	active  *playback.Controller
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service over a record store and template library.
// Call Start before playing sessions.
func New(store repository.RecordStore, library composer.Library, opts ...Option) *Service {
	s := &Service{
		store:            store,
		library:          library,
		queueSize:        256,
		retryInterval:    30 * time.Second,
		focusK:           2,
		minTestTypes:     2,
		strongThreshold:  80,
		countdownFrom:    10,
		instructionTicks: 5,
		location:         time.UTC,
		recentSessions:   5,
		now:              time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.normalizer = scoring.NewNormalizer()
	s.builder = profile.NewBuilder(
		profile.WithFocusK(s.focusK),
		profile.WithMinTestTypes(s.minTestTypes),
		profile.WithStrongThreshold(s.strongThreshold),
	)
	s.composer = composer.NewComposer(library)
	s.tracker = progress.NewTracker(store, s.now,
		progress.WithLocation(s.location),
		progress.WithRecentSessions(s.recentSessions),
	)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.persister = worker.NewPersister(s.queue, store, worker.WithRetryInterval(s.retryInterval))
	return s
}

// Start launches the persistence worker. Starting twice is a no-op; a
// stopped service cannot be started again.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errkind.NewKind("start", ErrStopped)
	}
	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.persister.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "training service started",
		logger.Int("queueSize", s.queueSize),
		logger.Duration("retryInterval", s.retryInterval),
	)
	return nil
}

// Stop abandons any active session, drains the persistence queue and
// closes the store. All shutdown errors are returned together.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.stopped = true
	active := s.active
	s.active = nil
	cancel := s.cancel
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping training service...")

	var err error
	if active != nil && !active.State().Phase.Terminal() {
		err = multierr.Append(err, active.Cancel(ctx))
	}
	err = multierr.Append(err, s.persister.Shutdown(ctx))
	if n := s.persister.PendingCount(); n > 0 {
		s.logger.Warn(ctx, "records still pending at shutdown", logger.Int("pending", n))
	}
	cancel()
	err = multierr.Append(err, s.store.Close())

	s.logger.Info(ctx, "training service stopped")
	return err
}

// Assess scores raw results for athlete and builds the weakness profile.
// Out-of-range measurements are left out and reported in Rejected; the
// profile is still built from the rest.
func (s *Service) Assess(ctx context.Context, athlete model.AthleteProfile, raw []model.AssessmentResult) (Assessment, error) {
	if athlete.ID == "" || athlete.Age <= 0 {
		return Assessment{}, errkind.NewKind("assess", ErrIncompleteProfile)
	}

	var out Assessment
	group := athlete.AgeGroup()
	for _, r := range raw {
		res, err := s.normalizer.Normalize(r.TestType, r.RawMeasurement, group)
		if err != nil {
			s.logger.Warn(ctx, "assessment result rejected",
				logger.String("result_id", r.ID),
				logger.String("test_type", string(r.TestType)),
				logger.Error(err),
			)
			out.Rejected = multierr.Append(out.Rejected, fmt.Errorf("result %s: %w", r.ID, err))
			continue
		}
		if r.AthleteID == "" {
			r.AthleteID = athlete.ID
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = s.now()
		}
		r.Score = res.Score
		r.Percentile = res.Percentile
		r.Approximate = res.Approximate
		out.Results = append(out.Results, r)
	}

	p, err := s.builder.Build(ctx, out.Results)
	if err != nil {
		return out, errkind.WrapKind("assess", err, out.Rejected)
	}
	out.Profile = p
	return out, nil
}

// Compose builds a training session for the athlete.
func (s *Service) Compose(ctx context.Context, p model.WeaknessProfile, athlete model.AthleteProfile, cons composer.Constraints) (model.TrainingSession, error) {
	session, err := s.composer.Compose(ctx, p, athlete, cons)
	if err != nil {
		s.logger.Warn(ctx, "composition failed",
			logger.String("athleteID", athlete.ID),
			logger.Error(err),
		)
		return model.TrainingSession{}, err
	}
	return session, nil
}

// StartSession creates the playback controller for session. Only one
// session may be active at a time. When src is non-nil its samples are fed
// to the controller until the session ends.
func (s *Service) StartSession(ctx context.Context, session model.TrainingSession, src playback.MetricSource, opts ...playback.Option) (*playback.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, errkind.NewKind("start session", ErrNotStarted)
	}
	if s.active != nil && !s.active.State().Phase.Terminal() {
		return nil, errkind.NewKind("start session", ErrSessionActive)
	}

	base := []playback.Option{
		playback.WithRecordSink(s.persister),
		playback.WithCountdownFrom(s.countdownFrom),
		playback.WithAutoBegin(s.instructionTicks),
		playback.WithClock(s.now),
		playback.WithOnFinish(s.onFinish(ctx, session.ID)),
	}
	if s.announcer != nil {
		base = append(base, playback.WithAnnouncer(s.announcer))
	}
	c, err := playback.New(session, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	s.active = c
	if src != nil {
		playback.Attach(ctx, c, src)
	}

	s.logger.Info(ctx, "session started",
		logger.String("sessionID", session.ID),
		logger.Int("exercises", len(session.Exercises)),
	)
	return c, nil
}

func (s *Service) onFinish(ctx context.Context, sessionID string) func(playback.Snapshot, *model.WorkoutSessionRecord) {
	return func(snap playback.Snapshot, rec *model.WorkoutSessionRecord) {
		if rec == nil {
			s.logger.Info(ctx, "session abandoned", logger.String("sessionID", sessionID))
			return
		}
		s.logger.Info(ctx, "session completed",
			logger.String("sessionID", sessionID),
			logger.String("recordID", rec.ID),
			logger.Int("reps", rec.Reps),
			logger.Duration("elapsed", snap.Elapsed),
		)
	}
}

// Active returns the current controller, if a session is in progress.
func (s *Service) Active() (*playback.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.State().Phase.Terminal() {
		return nil, false
	}
	return s.active, true
}

// RecordSession submits an externally produced record for persistence.
func (s *Service) RecordSession(ctx context.Context, rec model.WorkoutSessionRecord) error {
	if rec.ID == "" || rec.AthleteID == "" {
		return errkind.NewKind("record session", progress.ErrInvalidRecord)
	}
	return s.persister.Submit(ctx, rec)
}

// DeleteSession removes a record whether it is stored or still pending.
// Deleting an unknown ID is a no-op.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.persister.Discard(id)
	return s.tracker.DeleteSession(ctx, id)
}

// Metrics computes progress for an athlete over stored and pending records.
func (s *Service) Metrics(ctx context.Context, athleteID string) (model.ProgressMetrics, error) {
	return s.tracker.Metrics(ctx, athleteID, s.persister.Pending(athleteID)...)
}

// Performance folds standalone samples into personal records and the
// 30-day trend.
func (s *Service) Performance(samples []model.PerformanceSample) (map[string]model.PerformanceSample, map[string]progress.Trend) {
	return progress.PersonalRecords(samples, nil), progress.Trend30d(samples, s.now())
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.persister.PendingCount()
	metrics.UpdateRecordsPending(pending)

	stats := map[string]any{
		"started":         s.started,
		"pending_records": pending,
		"queue_length":    s.queue.Len(),
		"queue_capacity":  s.queue.Capacity(),
		"session_active":  false,
	}
	if s.active != nil {
		st := s.active.State()
		stats["session_active"] = !st.Phase.Terminal()
		stats["session_phase"] = string(st.Phase)
	}
	return stats
}
