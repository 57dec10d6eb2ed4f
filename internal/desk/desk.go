// Package desk is the read side of the dashboard. It renders the article
// store and derives the gamma exposure profile from the live options
// snapshot on demand.
package desk

import (
	"errors"
	"time"

	"github.com/rickgao/marketdesk/internal/article"
	"github.com/rickgao/marketdesk/internal/gex"
	"github.com/rickgao/marketdesk/internal/options"
)

// ErrUnavailable is returned by GEX before any snapshot has been published.
var ErrUnavailable = errors.New("GEX data not available")

// Result is a computed exposure profile plus the snapshot it came from.
type Result struct {
	gex.Profile
	Symbol     string
	Date       time.Time // Market day of the snapshot
	ComputedAt time.Time
}

// Desk serves reads over the shared pipeline state.
type Desk struct {
	store  *article.Store
	slot   *options.Slot
	window float64
	now    func() time.Time
}

// New creates a Desk. A non-positive window selects gex.DefaultWindow.
func New(store *article.Store, slot *options.Slot, window float64) *Desk {
	if window <= 0 {
		window = gex.DefaultWindow
	}
	return &Desk{
		store:  store,
		slot:   slot,
		window: window,
		now:    time.Now,
	}
}

// Articles returns the stored articles newest first with dates rendered in
// the IANA zone tz. An empty tz means UTC.
func (d *Desk) Articles(tz string) ([]article.Article, error) {
	return d.store.SnapshotIn(tz)
}

// ArticleCount returns the number of stored articles.
func (d *Desk) ArticleCount() int {
	return d.store.Len()
}

// SnapshotVersion returns the version of the live options snapshot, 0 if
// none has been published.
func (d *Desk) SnapshotVersion() uint64 {
	_, v := d.slot.Load()
	return v
}

// GEX computes the exposure profile of the live snapshot.
func (d *Desk) GEX() (Result, error) {
	snap, _ := d.slot.Load()
	if snap == nil {
		return Result{}, ErrUnavailable
	}

	return Result{
		Profile:    gex.Compute(*snap, d.window),
		Symbol:     snap.Symbol,
		Date:       snap.Date,
		ComputedAt: d.now().UTC(),
	}, nil
}
