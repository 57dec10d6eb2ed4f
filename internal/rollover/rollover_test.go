package rollover

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingStore struct {
	resets atomic.Int32
}

func (c *countingStore) Reset() {
	c.resets.Add(1)
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestScheduler_ResetsOncePerDate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 5, 23, 58, 0, 0, time.UTC)}
	store := &countingStore{}
	s := newWithClock(DefaultConfig(), store, nil, clock.Now)

	if s.Check() {
		t.Error("Check on startup date reset the store")
	}

	clock.Set(time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC))
	if s.Check() {
		t.Error("Check before midnight reset the store")
	}

	// First tick after midnight, possibly late by up to one interval.
	clock.Set(time.Date(2024, 1, 6, 0, 0, 45, 0, time.UTC))
	if !s.Check() {
		t.Error("Check after midnight did not reset the store")
	}

	for i := 0; i < 5; i++ {
		clock.Set(time.Date(2024, 1, 6, 1+i, 0, 0, 0, time.UTC))
		if s.Check() {
			t.Errorf("tick %d on the same date reset again", i)
		}
	}

	if got := store.resets.Load(); got != 1 {
		t.Errorf("resets = %d, want 1", got)
	}
	if want := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC); !s.Current().Equal(want) {
		t.Errorf("Current() = %v, want %v", s.Current(), want)
	}
}

func TestScheduler_UsesUTCDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	// 08:00 JST on the 6th is still the 5th in UTC.
	clock := &fakeClock{now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	store := &countingStore{}
	s := newWithClock(DefaultConfig(), store, nil, clock.Now)

	clock.Set(time.Date(2024, 1, 6, 8, 0, 0, 0, tokyo))
	if s.Check() {
		t.Error("local date change reset the store before UTC rollover")
	}

	clock.Set(time.Date(2024, 1, 6, 9, 30, 0, 0, tokyo))
	if !s.Check() {
		t.Error("UTC rollover did not reset the store")
	}
}

func TestScheduler_SkippedDays(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	store := &countingStore{}
	s := newWithClock(DefaultConfig(), store, nil, clock.Now)

	// A process suspended over several days resets once on wake.
	clock.Set(time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC))
	if !s.Check() {
		t.Error("Check after several days did not reset")
	}
	if s.Check() {
		t.Error("second Check reset again")
	}
	if got := store.resets.Load(); got != 1 {
		t.Errorf("resets = %d, want 1", got)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	store := &countingStore{}
	s := New(Config{Interval: time.Second}, store, nil)

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
	s.Stop() // idempotent
}
