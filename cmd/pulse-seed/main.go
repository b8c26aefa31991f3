// Command pulse-seed writes deterministic synthetic workout history into
// the configured record store, and optionally an assessment file that
// cmd/pulse can read.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/okian/pulse/internal/adapters/repository"
	"github.com/okian/pulse/internal/config"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/progress"
	"github.com/okian/pulse/internal/seed"
	"github.com/okian/pulse/pkg/logger"
)

type assessmentFile struct {
	Athlete model.AthleteProfile     `yaml:"athlete"`
	Results []model.AssessmentResult `yaml:"results"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pulse-seed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("pulse-seed", flag.ContinueOnError)
	seedValue := fs.Int64("seed", 1, "generator seed")
	days := fs.Int("days", 60, "days of history ending today")
	athleteID := fs.String("athlete", "", "athlete ID (default generated)")
	out := fs.String("out", "", "write a matching assessment YAML file here")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *days <= 0 {
		return fmt.Errorf("-days must be positive, got %d", *days)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.InitWithOptions(logger.WithWriter(os.Stderr)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Get().Named("seed")
	if cfg.StoreDriver == repository.DriverMemory {
		log.Warn(ctx, "seeding the memory store; records are lost on exit")
	}

	store, err := repository.Open(ctx, cfg.StoreDriver,
		repository.WithSQLitePath(cfg.SQLitePath),
		repository.WithPostgresDSN(cfg.PostgresDSN),
	)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	g := seed.New(*seedValue)
	athlete := g.Athlete()
	if *athleteID != "" {
		athlete.ID = *athleteID
	}
	end := time.Now().In(cfg.Location())
	recs := g.History(athlete.ID, end, *days)
	if err := seed.Write(ctx, store, recs); err != nil {
		return err
	}
	log.Info(ctx, "history written",
		logger.String("athleteID", athlete.ID),
		logger.Int("records", len(recs)),
		logger.String("driver", cfg.StoreDriver),
	)

	if *out != "" {
		if err := writeAssessment(*out, athlete, g.Assessments(athlete.ID, end)); err != nil {
			return err
		}
	}

	stored, err := store.List(ctx, athlete.ID)
	if err != nil {
		return err
	}
	m := progress.Compute(stored, end, progress.WithLocation(cfg.Location()))
	_, err = fmt.Fprintf(stdout, "%s %s: %d workouts, %d reps, current streak %d, longest streak %d\n",
		athlete.ID, athlete.Name, m.TotalWorkouts, m.TotalReps, m.CurrentStreak, m.LongestStreak)
	return err
}

func writeAssessment(path string, athlete model.AthleteProfile, results []model.AssessmentResult) error {
	raw, err := yaml.Marshal(assessmentFile{Athlete: athlete, Results: results})
	if err != nil {
		return fmt.Errorf("encoding assessment: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing assessment: %w", err)
	}
	return nil
}
