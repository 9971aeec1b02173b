// Package scheduler drives the saved-search watcher loop.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jobscout-za/jobscout/internal/model"
)

// Poller is one saved search the scheduler drives.
type Poller interface {
	Name() string
	Poll(ctx context.Context) error
}

// Scheduler runs every poller once per cycle, one after another, and waits
// the configured interval between cycles.
type Scheduler struct {
	pollers   []Poller
	interval  time.Duration
	pause     time.Duration // between pollers within one cycle
	store     model.SeenStore
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a scheduler for pollers. pause may be zero.
func NewScheduler(pollers []Poller, interval, pause time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:  pollers,
		interval: interval,
		pause:    pause,
		logger:   logger,
	}
}

// WithCleanup makes every cycle prune store entries older than retention.
func (s *Scheduler) WithCleanup(store model.SeenStore, retention time.Duration) *Scheduler {
	s.store = store
	s.retention = retention
	return s
}

// Run starts with an immediate cycle and then waits interval after the end
// of each cycle. It returns nil once ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting watcher",
		"interval", s.interval.String(),
		"searches", len(s.pollers),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for cycle := 1; ; cycle++ {
		select {
		case <-ctx.Done():
			s.logger.Info("watcher stopped", "cycles", cycle-1)
			return nil
		case <-timer.C:
		}

		s.runCycle(ctx, cycle)
		timer.Reset(s.interval)
	}
}

func (s *Scheduler) runCycle(ctx context.Context, cycle int) {
	start := time.Now()
	failed := 0

	for i, p := range s.pollers {
		if i > 0 && !wait(ctx, s.pause) {
			return
		}
		if ctx.Err() != nil {
			return
		}

		if err := p.Poll(ctx); err != nil {
			failed++
			s.logger.Error("poll failed", "search", p.Name(), "error", err)
		}
	}

	if s.store != nil && s.retention > 0 {
		if err := s.store.Cleanup(s.retention); err != nil {
			s.logger.Warn("store cleanup failed", "error", err)
		}
	}

	s.logger.Info("cycle complete",
		"cycle", cycle,
		"searches", len(s.pollers),
		"failed", failed,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
}

// wait sleeps for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
