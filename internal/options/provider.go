package options

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// ErrNoData marks a day for which the provider has no price or chain data.
var ErrNoData = errors.New("no data for date")

// Provider is the market data source for one underlying.
type Provider interface {
	// UnderlyingClose returns the underlying's closing price on day.
	UnderlyingClose(ctx context.Context, symbol string, day time.Time) (float64, error)

	// OptionCloses returns the closing price of each contract traded on day,
	// keyed by OCC contract identifier.
	OptionCloses(ctx context.Context, symbol string, day time.Time) (map[string]float64, error)
}

// Shape builds a snapshot from raw closes. Contracts are visited in
// identifier order so the call and put lists are deterministic; identifiers
// that do not parse are logged and dropped.
func Shape(symbol string, day time.Time, price float64, closes map[string]float64, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ids := make([]string, 0, len(closes))
	for id := range closes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snap := &Snapshot{
		Symbol:          symbol,
		Date:            day,
		UnderlyingPrice: price,
	}

	var skipped int
	for _, id := range ids {
		c, err := ParseContract(id)
		if err != nil {
			logger.Debug("skipping contract", "contract", id, "err", err)
			skipped++
			continue
		}
		q := Quote{Strike: c.Strike, Price: closes[id]}
		switch c.Side {
		case Call:
			snap.Calls = append(snap.Calls, q)
		case Put:
			snap.Puts = append(snap.Puts, q)
		}
	}

	if skipped > 0 {
		logger.Warn("dropped unparseable contracts", "count", skipped, "symbol", symbol)
	}
	if len(snap.Calls) == 0 && len(snap.Puts) == 0 {
		return nil, fmt.Errorf("%w: %s has no usable contracts", ErrNoData, day.Format(time.DateOnly))
	}

	return snap, nil
}
