// Package schedule runs periodic recompute work on gocron. The nightly job
// rebuilds the active season; the catch-up sweep resubmits the active
// season when one of its cached documents is missing (for example after a
// cache backend was wiped, or a recompute failed while the service was
// down).
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
)

// Submitter queues a recompute. *recompute.Dispatcher satisfies it.
type Submitter interface {
	Submit(ctx context.Context, seasonID, trigger string) (recompute.Job, error)
}

// ActiveSeasonFunc resolves the active season ID.
type ActiveSeasonFunc func(ctx context.Context) (string, error)

// Config controls the scheduled tasks. An empty Cron or a zero
// CatchUpInterval disables that task.
type Config struct {
	Cron            string
	CatchUpInterval time.Duration
	Location        *time.Location
}

// DefaultConfig returns production defaults: nightly at 03:00, sweep every
// 15 minutes.
func DefaultConfig() Config {
	return Config{
		Cron:            "0 3 * * *",
		CatchUpInterval: 15 * time.Minute,
		Location:        time.UTC,
	}
}

type Scheduler struct {
	s      gocron.Scheduler
	submit Submitter
	active ActiveSeasonFunc
	cache  snapshot.Reader
	logger *slog.Logger
}

// New registers the configured tasks. cache may be nil, which disables the
// catch-up sweep.
func New(cfg Config, submit Submitter, active ActiveSeasonFunc, cache snapshot.Reader, logger *slog.Logger) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	sch := &Scheduler{s: s, submit: submit, active: active, cache: cache, logger: logger}

	if cfg.Cron != "" {
		_, err := s.NewJob(
			gocron.CronJob(cfg.Cron, false),
			gocron.NewTask(sch.nightly),
			gocron.WithName("recompute-active"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("schedule recompute %q: %w", cfg.Cron, err)
		}
	}

	if cfg.CatchUpInterval > 0 && cache != nil {
		_, err := s.NewJob(
			gocron.DurationJob(cfg.CatchUpInterval),
			gocron.NewTask(sch.catchUp),
			gocron.WithName("cache-catch-up"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("schedule catch-up sweep: %w", err)
		}
	}

	logger.Info("Recompute schedule configured", "cron", cfg.Cron, "catchup", cfg.CatchUpInterval, "location", loc.String())
	return sch, nil
}

func (s *Scheduler) Start() {
	s.s.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.s.Shutdown()
}

func (s *Scheduler) nightly() {
	s.submitActive(context.Background(), "cron")
}

func (s *Scheduler) catchUp() {
	ctx := context.Background()
	seasonID, err := s.active(ctx)
	if err != nil {
		s.logger.Warn("Catch-up sweep: no active season", "error", err)
		return
	}
	missing := MissingKinds(ctx, s.cache, seasonID)
	if len(missing) == 0 {
		return
	}
	s.logger.Info("Catch-up sweep: cached documents missing", "season", seasonID, "kinds", missing)
	if _, err := s.submit.Submit(ctx, seasonID, "catchup"); err != nil {
		s.logger.Warn("Catch-up sweep: submit failed", "season", seasonID, "error", err)
	}
}

func (s *Scheduler) submitActive(ctx context.Context, trigger string) {
	seasonID, err := s.active(ctx)
	if err != nil {
		s.logger.Warn("Scheduled recompute skipped: no active season", "error", err)
		return
	}
	if _, err := s.submit.Submit(ctx, seasonID, trigger); err != nil {
		s.logger.Warn("Scheduled recompute submit failed", "season", seasonID, "error", err)
	}
}

// MissingKinds lists the document kinds with no cached document for a
// season. Read errors other than not-found are treated as present so a
// flaky backend does not cause a resubmit storm.
func MissingKinds(ctx context.Context, cache snapshot.Reader, seasonID string) []snapshot.Kind {
	var missing []snapshot.Kind
	for _, kind := range snapshot.Kinds {
		if _, err := cache.Get(ctx, seasonID, kind); errors.Is(err, snapshot.ErrNotFound) {
			missing = append(missing, kind)
		}
	}
	return missing
}
