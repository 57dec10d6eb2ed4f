// Package alpacadata provides daily closing prices for an underlying and its
// option chain from the Alpaca market data API.
package alpacadata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/rickgao/marketdesk/internal/options"
	"github.com/rickgao/marketdesk/internal/pubdate"
)

// DefaultBatchSize is the number of option symbols per multi-bar request.
const DefaultBatchSize = 100

// DefaultRequestTimeout bounds each individual SDK request.
const DefaultRequestTimeout = 10 * time.Second

// Config holds client configuration.
type Config struct {
	APIKey    string
	APISecret string
	DataURL   string // Optional market data base URL override
	BatchSize int    // Option symbols per bars request (default: 100)

	// RequestTimeout bounds each SDK request, not the whole chain lookup
	// (default: 10s).
	RequestTimeout time.Duration
}

// marketClient is the subset of the SDK client used here.
type marketClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	GetOptionChain(underlying string, req marketdata.GetOptionChainRequest) (map[string]marketdata.OptionSnapshot, error)
	GetMultiOptionBars(symbols []string, req marketdata.GetOptionBarsRequest) (map[string][]marketdata.OptionBar, error)
}

// Provider implements options.Provider over Alpaca.
type Provider struct {
	client    marketClient
	batchSize int
	timeout   time.Duration
	logger    *slog.Logger
}

var _ options.Provider = (*Provider)(nil)

// New creates a Provider.
func New(cfg Config, logger *slog.Logger) *Provider {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.DataURL != "" {
		opts.BaseURL = cfg.DataURL
	}

	return newWithClient(marketdata.NewClient(opts), cfg, logger)
}

func newWithClient(client marketClient, cfg Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Provider{
		client:    client,
		batchSize: cfg.BatchSize,
		timeout:   cfg.RequestTimeout,
		logger:    logger,
	}
}

// UnderlyingClose returns the closing price of symbol on day.
func (p *Provider) UnderlyingClose(ctx context.Context, symbol string, day time.Time) (float64, error) {
	day = pubdate.Day(day)

	bars, err := call(ctx, p.timeout, func() ([]marketdata.Bar, error) {
		return p.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     day,
			End:       day.AddDate(0, 0, 1),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	for i := len(bars) - 1; i >= 0; i-- {
		if pubdate.SameDay(bars[i].Timestamp, day) {
			return bars[i].Close, nil
		}
	}
	return 0, fmt.Errorf("%w: no %s bar for %s", options.ErrNoData, symbol, day.Format(time.DateOnly))
}

// OptionCloses returns the closing price of every option on symbol that
// traded on day, keyed by OCC contract id.
func (p *Provider) OptionCloses(ctx context.Context, symbol string, day time.Time) (map[string]float64, error) {
	day = pubdate.Day(day)

	chain, err := call(ctx, p.timeout, func() (map[string]marketdata.OptionSnapshot, error) {
		return p.client.GetOptionChain(symbol, marketdata.GetOptionChainRequest{})
	})
	if err != nil {
		return nil, fmt.Errorf("GetOptionChain %s: %w", symbol, err)
	}

	closes, missing := dailyCloses(chain, day)

	if len(missing) > 0 {
		p.logger.Debug("fetching option bars",
			"date", day.Format(time.DateOnly),
			"contracts", len(missing),
			"from_snapshot", len(closes),
		)
	}

	for _, batch := range batches(missing, p.batchSize) {
		bars, err := call(ctx, p.timeout, func() (map[string][]marketdata.OptionBar, error) {
			return p.client.GetMultiOptionBars(batch, marketdata.GetOptionBarsRequest{
				TimeFrame: marketdata.OneDay,
				Start:     day,
				End:       day.AddDate(0, 0, 1),
			})
		})
		if err != nil {
			return nil, fmt.Errorf("GetOptionMultiBars %s: %w", symbol, err)
		}
		for id, series := range bars {
			for i := len(series) - 1; i >= 0; i-- {
				if pubdate.SameDay(series[i].Timestamp, day) {
					closes[id] = series[i].Close
					break
				}
			}
		}
	}

	if len(closes) == 0 {
		return nil, fmt.Errorf("%w: no %s option closes for %s", options.ErrNoData, symbol, day.Format(time.DateOnly))
	}
	return closes, nil
}

// dailyCloses takes closes from chain snapshots whose daily bar is dated
// day and returns the sorted ids that still need a bars lookup.
func dailyCloses(chain map[string]marketdata.OptionSnapshot, day time.Time) (map[string]float64, []string) {
	closes := make(map[string]float64, len(chain))
	var missing []string

	for id, snap := range chain {
		if snap.DailyBar != nil && pubdate.SameDay(snap.DailyBar.Timestamp, day) {
			closes[id] = snap.DailyBar.Close
			continue
		}
		missing = append(missing, id)
	}

	sort.Strings(missing)
	return closes, missing
}

// batches splits ids into consecutive groups of at most size.
func batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// call runs fn, which cannot be cancelled, and returns early when ctx ends
// or timeout elapses.
func call[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
