// Package gex computes a gamma exposure profile from an options snapshot.
//
// Gamma is approximated with a Gaussian kernel over the relative distance
// between the underlying price S and each strike K:
//
//	g(K) = 1/(K·√(2π)) · exp(-0.5·((S-K)/K)²)
//
// and the exposure at K is g(K)·(call price - put price).
package gex

import (
	"math"
	"time"

	"github.com/rickgao/marketdesk/internal/options"
)

// DefaultWindow is the half-width of the strike window around the
// underlying price.
const DefaultWindow = 125.0

// Profile is the per-strike and aggregate exposure of one snapshot.
type Profile struct {
	Strikes         []int
	Exposures       []float64
	Aggregate       float64
	UnderlyingPrice float64
	AsOf            time.Time
}

// Compute derives the exposure profile of s. Calls and puts are each
// restricted to [S-window, S+window] and then paired by position in their
// filtered order, not by strike value. The strike reported for a pair is the
// call's, truncated to an int.
//
// Compute is pure and never fails; if either filtered side is empty the
// profile has no strikes and a zero aggregate.
func Compute(s options.Snapshot, window float64) Profile {
	spot := s.UnderlyingPrice
	calls := filter(s.Calls, spot-window, spot+window)
	puts := filter(s.Puts, spot-window, spot+window)

	n := min(len(calls), len(puts))
	p := Profile{
		Strikes:         make([]int, 0, n),
		Exposures:       make([]float64, 0, n),
		UnderlyingPrice: spot,
		AsOf:            s.Date,
	}

	for i := 0; i < n; i++ {
		strike := calls[i].Strike
		exposure := Kernel(spot, strike) * (calls[i].Price - puts[i].Price)

		p.Strikes = append(p.Strikes, int(strike))
		p.Exposures = append(p.Exposures, exposure)
		p.Aggregate += exposure
	}

	return p
}

// Kernel returns the Gaussian weight of strike k for underlying price s.
func Kernel(s, k float64) float64 {
	d := (s - k) / k
	return 1 / (k * math.Sqrt(2*math.Pi)) * math.Exp(-0.5*d*d)
}

func filter(quotes []options.Quote, lo, hi float64) []options.Quote {
	out := make([]options.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Strike >= lo && q.Strike <= hi {
			out = append(out, q)
		}
	}
	return out
}
