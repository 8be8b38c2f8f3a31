// Package scheduler периодически запускает матчи, время начала которых наступило.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const autoStartJobName = "auto-start-matches"

// MatchStarter описывает часть MatchService, нужную планировщику.
type MatchStarter interface {
	StartDueMatches(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	s       gocron.Scheduler
	starter MatchStarter
	logger  *slog.Logger
	now     func() time.Time
}

func NewScheduler(starter MatchStarter, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:       s,
		starter: starter,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Start регистрирует задачу автозапуска матчей и запускает планировщик.
// Запуски не накладываются друг на друга.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) error {
	_, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.RunOnce(ctx) }),
		gocron.WithName(autoStartJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", autoStartJobName, err)
	}

	s.s.Start()
	s.logger.Info("scheduler started", slog.String("job", autoStartJobName), slog.Duration("interval", interval))
	return nil
}

// RunOnce запускает все просроченные матчи один раз.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	started, err := s.starter.StartDueMatches(ctx, s.now())
	if err != nil {
		s.logger.Error("auto-start matches failed", slog.Any("error", err))
		return 0
	}
	if started > 0 {
		s.logger.Info("matches auto-started", slog.Int("count", started))
	}
	return started
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}
