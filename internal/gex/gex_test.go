package gex

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rickgao/marketdesk/internal/options"
)

func TestCompute_SinglePairAtTheMoney(t *testing.T) {
	snap := options.Snapshot{
		UnderlyingPrice: 5000,
		Date:            time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Calls:           []options.Quote{{Strike: 5000, Price: 10.0}},
		Puts:            []options.Quote{{Strike: 5000, Price: 8.0}},
	}

	p := Compute(snap, DefaultWindow)

	want := (1 / (5000 * math.Sqrt(2*math.Pi))) * math.Exp(0) * 2.0
	if len(p.Exposures) != 1 {
		t.Fatalf("len(Exposures) = %d, want 1", len(p.Exposures))
	}
	if p.Exposures[0] != want {
		t.Errorf("Exposures[0] = %v, want %v", p.Exposures[0], want)
	}
	if p.Exposures[0] <= 0 {
		t.Errorf("Exposures[0] = %v, want positive", p.Exposures[0])
	}
	if p.Aggregate != want {
		t.Errorf("Aggregate = %v, want %v", p.Aggregate, want)
	}
	if !reflect.DeepEqual(p.Strikes, []int{5000}) {
		t.Errorf("Strikes = %v, want [5000]", p.Strikes)
	}
	if p.UnderlyingPrice != 5000 || !p.AsOf.Equal(snap.Date) {
		t.Errorf("UnderlyingPrice/AsOf = %v/%v", p.UnderlyingPrice, p.AsOf)
	}
}

func TestCompute_WindowIsInclusive(t *testing.T) {
	snap := options.Snapshot{
		UnderlyingPrice: 5000,
		Calls: []options.Quote{
			{Strike: 4874, Price: 1}, // outside
			{Strike: 4875, Price: 2},
			{Strike: 5125, Price: 3},
			{Strike: 5126, Price: 4}, // outside
		},
		Puts: []options.Quote{
			{Strike: 4875, Price: 1},
			{Strike: 5125, Price: 1},
		},
	}

	p := Compute(snap, DefaultWindow)

	if !reflect.DeepEqual(p.Strikes, []int{4875, 5125}) {
		t.Errorf("Strikes = %v, want [4875 5125]", p.Strikes)
	}
}

func TestCompute_PairsByPosition(t *testing.T) {
	// Calls and puts have different strikes in the window; pairing follows
	// list position and reports the call strike.
	snap := options.Snapshot{
		UnderlyingPrice: 100,
		Calls: []options.Quote{
			{Strike: 95, Price: 7},
			{Strike: 100, Price: 4},
			{Strike: 105, Price: 2},
		},
		Puts: []options.Quote{
			{Strike: 100, Price: 3},
			{Strike: 110, Price: 9},
		},
	}

	p := Compute(snap, 20)

	if !reflect.DeepEqual(p.Strikes, []int{95, 100}) {
		t.Fatalf("Strikes = %v, want [95 100]", p.Strikes)
	}
	want0 := Kernel(100, 95) * (7 - 3)
	want1 := Kernel(100, 100) * (4 - 9)
	if p.Exposures[0] != want0 || p.Exposures[1] != want1 {
		t.Errorf("Exposures = %v, want [%v %v]", p.Exposures, want0, want1)
	}
	if p.Aggregate != want0+want1 {
		t.Errorf("Aggregate = %v, want %v", p.Aggregate, want0+want1)
	}
}

func TestCompute_TruncatesStrike(t *testing.T) {
	snap := options.Snapshot{
		UnderlyingPrice: 187,
		Calls:           []options.Quote{{Strike: 187.5, Price: 2}},
		Puts:            []options.Quote{{Strike: 187.5, Price: 1}},
	}

	if got := Compute(snap, 10).Strikes; !reflect.DeepEqual(got, []int{187}) {
		t.Errorf("Strikes = %v, want [187]", got)
	}
}

func TestCompute_Empty(t *testing.T) {
	tests := []struct {
		name string
		snap options.Snapshot
	}{
		{"no contracts", options.Snapshot{UnderlyingPrice: 5000}},
		{"no puts", options.Snapshot{UnderlyingPrice: 5000, Calls: []options.Quote{{Strike: 5000, Price: 1}}}},
		{"all outside window", options.Snapshot{
			UnderlyingPrice: 5000,
			Calls:           []options.Quote{{Strike: 4000, Price: 1}},
			Puts:            []options.Quote{{Strike: 6000, Price: 1}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compute(tt.snap, DefaultWindow)
			if len(p.Strikes) != 0 || len(p.Exposures) != 0 {
				t.Errorf("Strikes/Exposures = %v/%v, want empty", p.Strikes, p.Exposures)
			}
			if p.Aggregate != 0 {
				t.Errorf("Aggregate = %v, want 0", p.Aggregate)
			}
			if p.Strikes == nil || p.Exposures == nil {
				t.Error("empty profile should use non-nil slices")
			}
		})
	}
}

func TestCompute_IsPure(t *testing.T) {
	snap := options.Snapshot{
		UnderlyingPrice: 4783.45,
		Calls: []options.Quote{
			{Strike: 4700, Price: 95.1},
			{Strike: 4750, Price: 52.3},
			{Strike: 4800, Price: 21.7},
			{Strike: 4850, Price: 6.2},
		},
		Puts: []options.Quote{
			{Strike: 4700, Price: 8.4},
			{Strike: 4750, Price: 17.9},
			{Strike: 4800, Price: 36.0},
			{Strike: 4850, Price: 71.5},
		},
	}
	before := options.Snapshot{
		UnderlyingPrice: snap.UnderlyingPrice,
		Calls:           append([]options.Quote(nil), snap.Calls...),
		Puts:            append([]options.Quote(nil), snap.Puts...),
	}

	first := Compute(snap, DefaultWindow)
	for i := 0; i < 10; i++ {
		again := Compute(snap, DefaultWindow)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
		if math.Float64bits(first.Aggregate) != math.Float64bits(again.Aggregate) {
			t.Fatalf("run %d aggregate bits differ", i)
		}
	}

	if !reflect.DeepEqual(snap.Calls, before.Calls) || !reflect.DeepEqual(snap.Puts, before.Puts) {
		t.Error("Compute mutated its input")
	}
}

func TestKernel(t *testing.T) {
	atm := Kernel(5000, 5000)
	if want := 1 / (5000 * math.Sqrt(2*math.Pi)); atm != want {
		t.Errorf("Kernel(5000, 5000) = %v, want %v", atm, want)
	}
	if far := Kernel(100, 200); far >= Kernel(100, 100) {
		t.Errorf("Kernel(100, 200) = %v, want less than at the money", far)
	}
}
