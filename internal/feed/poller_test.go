package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/marketdesk/internal/article"
)

// mockSink records offered articles and rejects repeated titles.
type mockSink struct {
	mu     sync.Mutex
	titles map[string]bool
	order  []string
}

func newMockSink() *mockSink {
	return &mockSink{titles: make(map[string]bool)}
}

func (m *mockSink) TryAdd(a article.Article) article.AddResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.titles[a.Title] {
		return article.Duplicate
	}
	m.titles[a.Title] = true
	m.order = append(m.order, a.Title)
	return article.Added
}

func (m *mockSink) added() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)
}

func TestPoller_PollOnce(t *testing.T) {
	sources := []Source{
		{Name: "alpha", URL: "https://alpha.example/rss"},
		{Name: "down", URL: "https://down.example/rss"},
		{Name: "beta", URL: "https://beta.example/rss"},
	}

	fetcher := FetcherFunc(func(ctx context.Context, src Source) ([]Entry, error) {
		switch src.Name {
		case "alpha":
			return []Entry{
				{Title: "A1", Link: "https://alpha.example/1", Published: "2024-01-05T09:00:00Z"},
				{Title: "old", Link: "https://alpha.example/2", Published: "2024-01-04T23:59:59Z"},
				{Title: "undated", Link: "https://alpha.example/3"},
				{Title: "garbled", Link: "https://alpha.example/4", Published: "5th of Jan"},
			}, nil
		case "beta":
			// Offset pushes this into today's UTC date.
			return []Entry{
				{Title: "B1", Link: "https://beta.example/1", Published: "Thu, 04 Jan 2024 22:00:00 -0500"},
				{Title: "A1", Link: "https://beta.example/dup", Published: "2024-01-05T10:00:00Z"},
			}, nil
		default:
			return nil, errors.New("connection refused")
		}
	})

	sink := newMockSink()
	p := New(DefaultConfig(), fetcher, sources, sink, nil)
	p.now = fixedNow

	stats := p.PollOnce(context.Background())

	if stats.Sources != 3 {
		t.Errorf("Sources = %d, want 3", stats.Sources)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if stats.Entries != 6 {
		t.Errorf("Entries = %d, want 6", stats.Entries)
	}
	if stats.Added != 2 {
		t.Errorf("Added = %d, want 2", stats.Added)
	}
	if stats.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", stats.Duplicates)
	}
	if stats.NotToday != 1 || stats.Undated != 1 || stats.Unparseable != 1 {
		t.Errorf("NotToday/Undated/Unparseable = %d/%d/%d, want 1/1/1",
			stats.NotToday, stats.Undated, stats.Unparseable)
	}

	got := sink.added()
	if len(got) != 2 || got[0] != "A1" || got[1] != "B1" {
		t.Errorf("added = %v, want [A1 B1]", got)
	}
}

func TestPoller_RecoversFromPanickingSource(t *testing.T) {
	sources := []Source{{Name: "boom"}, {Name: "fine"}}

	fetcher := FetcherFunc(func(ctx context.Context, src Source) ([]Entry, error) {
		if src.Name == "boom" {
			panic("malformed document")
		}
		return []Entry{{Title: "ok", Published: "2024-01-05 08:00:00"}}, nil
	})

	sink := newMockSink()
	p := New(DefaultConfig(), fetcher, sources, sink, nil)
	p.now = fixedNow

	stats := p.PollOnce(context.Background())

	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if stats.Added != 1 {
		t.Errorf("Added = %d, want 1", stats.Added)
	}
}

func TestPoller_PerSourceTimeout(t *testing.T) {
	sources := []Source{{Name: "stalled"}, {Name: "fast"}}

	fetcher := FetcherFunc(func(ctx context.Context, src Source) ([]Entry, error) {
		if src.Name == "stalled" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []Entry{{Title: "fast", Published: "2024-01-05 08:00:00"}}, nil
	})

	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond

	sink := newMockSink()
	p := New(cfg, fetcher, sources, sink, nil)
	p.now = fixedNow

	done := make(chan CycleStats, 1)
	go func() { done <- p.PollOnce(context.Background()) }()

	select {
	case stats := <-done:
		if stats.Failed != 1 || stats.Added != 1 {
			t.Errorf("Failed/Added = %d/%d, want 1/1", stats.Failed, stats.Added)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("PollOnce did not honour the per-source timeout")
	}
}

func TestPoller_Concurrency(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32

	fetcher := FetcherFunc(func(ctx context.Context, src Source) ([]Entry, error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)

		// Track max concurrent fetches.
		for {
			old := maxInFlight.Load()
			if current <= old || maxInFlight.CompareAndSwap(old, current) {
				break
			}
		}

		time.Sleep(20 * time.Millisecond)
		return nil, nil
	})

	var sources []Source
	for i := 0; i < 12; i++ {
		sources = append(sources, Source{Name: "src-" + string(rune('A'+i))})
	}

	cfg := DefaultConfig()
	cfg.Concurrency = 3

	p := New(cfg, fetcher, sources, newMockSink(), nil)
	p.PollOnce(context.Background())

	if got := maxInFlight.Load(); got > 3 {
		t.Errorf("maxInFlight = %d, want <= 3", got)
	}
}

func TestPoller_StartStop(t *testing.T) {
	var cycles atomic.Int32
	fetcher := FetcherFunc(func(ctx context.Context, src Source) ([]Entry, error) {
		cycles.Add(1)
		return nil, errors.New("always down")
	})

	cfg := DefaultConfig()
	cfg.Interval = 10 * time.Millisecond

	p := New(cfg, fetcher, []Source{{Name: "down"}}, newMockSink(), nil)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// A failing source must not stop the loop.
	deadline := time.Now().Add(2 * time.Second)
	for cycles.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := cycles.Load(); got < 3 {
		t.Errorf("cycles = %d, want >= 3", got)
	}
}
