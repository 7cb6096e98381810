package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/quantarena/agent-league/internal/config"
	"github.com/quantarena/agent-league/internal/league"
	"github.com/quantarena/agent-league/internal/logger"
	"github.com/quantarena/agent-league/internal/storage"
)

// Scheduler runs the decision cycle for every active league at the
// configured interval during NYSE market hours.
type Scheduler struct {
	service  *league.Service
	repo     *storage.Repository
	notifier league.Notifier
	config   *config.Config
	logger   *logger.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewScheduler(service *league.Service, repo *storage.Repository,
	notifier league.Notifier, cfg *config.Config, log *logger.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		repo:     repo,
		notifier: notifier,
		config:   cfg,
		logger:   log,
		loc:      cfg.MarketLocation(),
		now:      time.Now,
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	interval := s.config.TradingInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", interval.String())

	// Run immediately on start
	s.runCycles(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runCycles(ctx)
		}
	}
}

func (s *Scheduler) runCycles(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in scheduler cycle", "panic", fmt.Sprint(r))
			if s.notifier != nil {
				s.notifier.NotifyError("scheduler panic", fmt.Errorf("%v", r))
			}
		}
	}()

	if !s.isWithinMarketHours() {
		s.logger.Info("outside market hours, skipping cycle")
		return
	}

	leagues, err := s.repo.ListActiveLeagues()
	if err != nil {
		s.logger.Error("list active leagues", "error", err)
		return
	}
	if len(leagues) == 0 {
		s.logger.Info("no active leagues, skipping cycle")
		return
	}

	for _, l := range leagues {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.service.RunCycle(ctx, l.ID); err != nil {
			s.logger.Error("run cycle", "league_id", l.ID, "error", err)
			if s.notifier != nil {
				s.notifier.NotifyError("cycle", err)
			}
		}
	}
}

func (s *Scheduler) isWithinMarketHours() bool {
	now := s.now().In(s.loc)

	// Skip weekends
	weekday := now.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return false
	}

	totalMinutes := now.Hour()*60 + now.Minute()

	// NYSE regular session: 9:30 - 16:00 ET
	return totalMinutes >= 570 && totalMinutes <= 960
}
