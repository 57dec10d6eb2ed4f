// Package rollover clears the article store when the UTC date changes.
//
// The check runs on a coarse interval (default 60s); the reset may land up to
// one interval after midnight.
package rollover

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/rickgao/marketdesk/internal/pubdate"
)

// Resetter is cleared at each date rollover.
type Resetter interface {
	Reset()
}

// Config holds scheduler configuration.
type Config struct {
	Interval time.Duration // Check period (default: 60s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 60 * time.Second,
	}
}

// Scheduler watches the UTC date and resets the store once per change.
type Scheduler struct {
	cfg    Config
	store  Resetter
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current time.Time
	cron    *gocron.Scheduler
}

// New creates a Scheduler whose current date is today's UTC date.
func New(cfg Config, store Resetter, logger *slog.Logger) *Scheduler {
	return newWithClock(cfg, store, logger, time.Now)
}

func newWithClock(cfg Config, store Resetter, logger *slog.Logger, now func() time.Time) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Scheduler{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		now:     now,
		current: pubdate.Day(now()),
	}
}

// Current returns the date the store currently belongs to.
func (s *Scheduler) Current() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Check resets the store if the UTC date moved since the last check and
// reports whether it did.
func (s *Scheduler) Check() bool {
	today := pubdate.Day(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if today.Equal(s.current) {
		return false
	}

	s.store.Reset()
	s.logger.Info("utc date changed, article store reset",
		"from", s.current.Format(time.DateOnly),
		"to", today.Format(time.DateOnly),
	)
	s.current = today
	return true
}

// Start schedules Check every Interval.
func (s *Scheduler) Start() error {
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()

	if _, err := cron.Every(s.cfg.Interval).Do(func() { s.Check() }); err != nil {
		return err
	}
	cron.StartAsync()

	s.mu.Lock()
	s.cron = cron
	s.mu.Unlock()

	s.logger.Info("rollover scheduler started",
		"interval", s.cfg.Interval,
		"current_date", s.Current().Format(time.DateOnly),
	)
	return nil
}

// Stop halts scheduled checks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cron := s.cron
	s.cron = nil
	s.mu.Unlock()

	if cron != nil {
		cron.Stop()
		s.logger.Info("rollover scheduler stopped")
	}
}
