package options

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/marketdesk/internal/marketday"
	"github.com/rickgao/marketdesk/internal/pubdate"
)

// Config holds fetcher configuration.
type Config struct {
	Symbol       string           // Underlying symbol (default: SPX)
	Interval     time.Duration    // Pause between retry chains (default: 60s)
	Timeout      time.Duration    // Underlying close lookup timeout (default: 10s)
	ChainTimeout time.Duration    // Whole option chain lookup timeout (default: 2m)
	Retry        marketday.Policy // Date fallback chain (default: 5 attempts, 60s fixed backoff)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Symbol:       "SPX",
		Interval:     60 * time.Second,
		Timeout:      10 * time.Second,
		ChainTimeout: 2 * time.Minute,
		Retry:        marketday.DefaultPolicy(),
	}
}

// Fetcher refreshes the options snapshot slot in the background.
type Fetcher struct {
	cfg      Config
	provider Provider
	slot     *Slot
	logger   *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFetcher creates a new Fetcher publishing into slot.
func NewFetcher(cfg Config, provider Provider, slot *Slot, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Symbol == "" {
		cfg.Symbol = DefaultConfig().Symbol
	}
	return &Fetcher{
		cfg:      cfg,
		provider: provider,
		slot:     slot,
		logger:   logger.With("symbol", cfg.Symbol),
		now:      time.Now,
	}
}

// Start begins the refresh loop.
func (f *Fetcher) Start(ctx context.Context) error {
	f.ctx, f.cancel = context.WithCancel(ctx)

	f.wg.Add(1)
	go f.run()

	f.logger.Info("options fetcher started",
		"interval", f.cfg.Interval,
		"max_attempts", f.cfg.Retry.MaxAttempts,
		"retry_backoff", f.cfg.Retry.Backoff,
	)

	return nil
}

// Stop gracefully shuts down the fetcher.
func (f *Fetcher) Stop(ctx context.Context) error {
	if f.cancel != nil {
		f.cancel()
	}

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		f.logger.Info("options fetcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run refreshes, then waits Interval, until cancelled.
func (f *Fetcher) run() {
	defer f.wg.Done()

	for {
		// Failures are logged by Refresh; the prior snapshot stays live.
		_ = f.Refresh(f.ctx)

		if err := marketday.Sleep(f.ctx, f.cfg.Interval); err != nil {
			return
		}
	}
}

// Refresh runs one retry chain starting from today's UTC date. On success
// the new snapshot replaces the slot contents; on failure the slot is left
// untouched and the chain error is returned.
func (f *Fetcher) Refresh(ctx context.Context) error {
	start := time.Now()
	today := pubdate.Day(f.now())

	policy := f.cfg.Retry
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, next time.Time, err error) {
			f.logger.Warn("retrying with previous market day",
				"next_date", next.Format(time.DateOnly),
				"attempt", attempt,
				"max_attempts", policy.MaxAttempts,
				"err", err,
			)
		}
	}

	var fetched *Snapshot
	date, attempts, err := policy.Run(ctx, today, func(ctx context.Context, day time.Time) error {
		snap, err := f.fetchDay(ctx, day)
		if err != nil {
			return err
		}
		fetched = snap
		return nil
	})
	if err != nil {
		f.logger.Error("failed to fetch options data",
			"attempts", attempts,
			"duration", time.Since(start),
			"err", err,
		)
		return err
	}

	version := f.slot.Store(fetched)

	f.logger.Info("options snapshot published",
		"id", fetched.ID,
		"date", date.Format(time.DateOnly),
		"version", version,
		"underlying_price", fetched.UnderlyingPrice,
		"calls", len(fetched.Calls),
		"puts", len(fetched.Puts),
		"attempts", attempts,
		"duration", time.Since(start),
	)
	return nil
}

// fetchDay builds the snapshot for one day. The underlying lookup is bounded
// by Timeout and the chain lookup, which may span many provider requests, by
// ChainTimeout.
func (f *Fetcher) fetchDay(ctx context.Context, day time.Time) (*Snapshot, error) {
	price, err := f.callPrice(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("underlying close %s: %w", day.Format(time.DateOnly), err)
	}

	closes, err := f.callCloses(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("option chain %s: %w", day.Format(time.DateOnly), err)
	}

	snap, err := Shape(f.cfg.Symbol, day, price, closes, f.logger)
	if err != nil {
		return nil, err
	}
	snap.ID = uuid.New()
	snap.FetchedAt = f.now()
	return snap, nil
}

func (f *Fetcher) callPrice(ctx context.Context, day time.Time) (float64, error) {
	ctx, cancel := withTimeout(ctx, f.cfg.Timeout)
	defer cancel()
	return f.provider.UnderlyingClose(ctx, f.cfg.Symbol, day)
}

func (f *Fetcher) callCloses(ctx context.Context, day time.Time) (map[string]float64, error) {
	ctx, cancel := withTimeout(ctx, f.cfg.ChainTimeout)
	defer cancel()
	return f.provider.OptionCloses(ctx, f.cfg.Symbol, day)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
