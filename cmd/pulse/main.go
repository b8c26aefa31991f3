// Command pulse scores an assessment file, composes a session from it,
// plays the session and prints the athlete's progress as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/okian/pulse/internal/adapters/announce"
	"github.com/okian/pulse/internal/adapters/http/ops"
	"github.com/okian/pulse/internal/adapters/library"
	"github.com/okian/pulse/internal/adapters/metricsource"
	"github.com/okian/pulse/internal/adapters/repository"
	service "github.com/okian/pulse/internal/app"
	"github.com/okian/pulse/internal/config"
	"github.com/okian/pulse/internal/domain/composer"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/playback"
	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	logBackups      = 5
)

type flags struct {
	assessment string
	minutes    int
	intensity  string
	equipment  string
	focus      string
	metrics    string
	tick       time.Duration
	noServe    bool
}

// assessmentFile is the YAML input: an athlete and raw results.
type assessmentFile struct {
	Athlete model.AthleteProfile     `yaml:"athlete"`
	Results []model.AssessmentResult `yaml:"results"`
}

// report is the JSON written to stdout.
type report struct {
	Profile  model.WeaknessProfile       `json:"profile"`
	Session  model.TrainingSession       `json:"session"`
	Record   *model.WorkoutSessionRecord `json:"record,omitempty"`
	Metrics  model.ProgressMetrics       `json:"metrics"`
	Rejected []string                    `json:"rejected,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pulse:", err)
		if hint := service.Guidance(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("pulse", flag.ContinueOnError)
	fs.StringVar(&f.assessment, "assessment", "", "YAML file with athlete and raw assessment results (required)")
	fs.IntVar(&f.minutes, "minutes", 30, "target session length in minutes")
	fs.StringVar(&f.intensity, "intensity", "medium", "session intensity: low, medium or high")
	fs.StringVar(&f.equipment, "equipment", "", "comma separated equipment available")
	fs.StringVar(&f.focus, "focus", "", "comma separated categories overriding the profile focus")
	fs.StringVar(&f.metrics, "metrics", "", "YAML metric script replayed during playback")
	fs.DurationVar(&f.tick, "tick", 0, "wall-clock time per playback second (default from config)")
	fs.BoolVar(&f.noServe, "no-serve", false, "do not start the ops listener")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.assessment == "" {
		return f, errors.New("-assessment is required")
	}
	return f, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) (err error) {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}
	log := logger.Get().Named("pulse")

	input, err := readAssessment(f.assessment)
	if err != nil {
		return err
	}
	cons, err := constraints(f)
	if err != nil {
		return err
	}

	store, err := repository.Open(ctx, cfg.StoreDriver,
		repository.WithSQLitePath(cfg.SQLitePath),
		repository.WithPostgresDSN(cfg.PostgresDSN),
	)
	if err != nil {
		return err
	}
	lib, err := library.Load(cfg.LibraryPath)
	if err != nil {
		return multierr.Append(err, store.Close())
	}

	async := announce.NewAsync(announce.NewLog(nil), cfg.AnnounceBuffer)
	svc := service.New(store, lib,
		service.WithLogger(log.Named("service")),
		service.WithQueueSize(cfg.QueueSize),
		service.WithRetryInterval(cfg.RetryInterval()),
		service.WithFocusK(cfg.FocusK),
		service.WithMinTestTypes(cfg.MinTestTypes),
		service.WithStrongThreshold(cfg.StrongThreshold),
		service.WithCountdownFrom(cfg.CountdownFrom),
		service.WithInstructionTicks(cfg.InstructionTicks),
		service.WithLocation(cfg.Location()),
		service.WithRecentSessions(cfg.RecentSessions),
		service.WithAnnouncer(async),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err = multierr.Combine(err, svc.Stop(shutdownCtx), async.Close())
	}()

	tick := f.tick
	if tick <= 0 {
		tick = cfg.TickInterval()
	}

	g, gctx := errgroup.WithContext(ctx)
	opsCtx, stopOps := context.WithCancel(gctx)
	defer stopOps()

	if cfg.Addr != "" && !f.noServe {
		g.Go(func() error {
			return ops.NewServer(svc).Serve(opsCtx, cfg.Addr)
		})
	}

	var out report
	g.Go(func() error {
		defer stopOps()
		var err error
		out, err = session(gctx, svc, input, cons, f.metrics, tick)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	metrics, err := svc.Metrics(ctx, input.Athlete.ID)
	if err != nil {
		return err
	}
	out.Metrics = metrics

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// session runs the engine pipeline once: assess, compose, play.
func session(ctx context.Context, svc *service.Service, input assessmentFile, cons composer.Constraints, script string, tick time.Duration) (report, error) {
	var out report

	assessment, err := svc.Assess(ctx, input.Athlete, input.Results)
	for _, e := range multierr.Errors(assessment.Rejected) {
		out.Rejected = append(out.Rejected, e.Error())
	}
	if err != nil {
		return out, err
	}
	out.Profile = assessment.Profile

	ts, err := svc.Compose(ctx, assessment.Profile, input.Athlete, cons)
	if err != nil {
		return out, err
	}
	out.Session = ts

	var src playback.MetricSource
	if script != "" {
		s, err := metricsource.Load(script)
		if err != nil {
			return out, err
		}
		defer s.Stop()
		src = s
	}

	c, err := svc.StartSession(ctx, ts, src)
	if err != nil {
		return out, err
	}
	if err := playback.Drive(ctx, c, tick); err != nil {
		return out, err
	}
	if rec, ok := c.Record(); ok {
		out.Record = &rec
	}
	return out, nil
}

func initLogging(cfg *config.Config) error {
	opts := []logger.Option{logger.WithWriter(os.Stderr)}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, logBackups))
	}
	if err := logger.InitWithOptions(opts...); err != nil {
		return err
	}
	return logger.SetLevelString(cfg.LogLevel)
}

func readAssessment(path string) (assessmentFile, error) {
	var in assessmentFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("reading assessment: %w", err)
	}
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("parsing assessment %s: %w", path, err)
	}
	return in, nil
}

func constraints(f flags) (composer.Constraints, error) {
	intensity, err := types.ParseIntensity(f.intensity)
	if err != nil {
		return composer.Constraints{}, err
	}
	cons := composer.Constraints{
		DurationMinutes: f.minutes,
		Intensity:       intensity,
		Equipment:       split(f.equipment),
	}
	for _, name := range split(f.focus) {
		c, err := types.ParseCategory(name)
		if err != nil {
			return composer.Constraints{}, err
		}
		cons.Focus = append(cons.Focus, c)
	}
	return cons, nil
}

func split(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
