package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/marketdesk/internal/article"
	"github.com/rickgao/marketdesk/internal/pubdate"
)

// ArticleSink receives normalized articles.
type ArticleSink interface {
	TryAdd(a article.Article) article.AddResult
}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Cycle period, measured start to start (default: 5s)
	Timeout     time.Duration // Per-source timeout (default: 10s)
	Concurrency int           // Max sources fetched at once (default: 4)
	Layouts     []string      // Publication date layouts, priority ordered
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		Concurrency: 4,
		Layouts:     pubdate.DefaultLayouts,
	}
}

// CycleStats summarizes one poll cycle.
type CycleStats struct {
	Sources     int
	Failed      int
	Entries     int
	Undated     int
	Unparseable int
	NotToday    int
	Added       int
	Duplicates  int
}

// Poller periodically pulls every source into the article store.
type Poller struct {
	cfg     Config
	fetcher Fetcher
	sources []Source
	sink    ArticleSink
	logger  *slog.Logger
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, fetcher Fetcher, sources []Source, sink ArticleSink, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if len(cfg.Layouts) == 0 {
		cfg.Layouts = pubdate.DefaultLayouts
	}
	return &Poller{
		cfg:     cfg,
		fetcher: fetcher,
		sources: sources,
		sink:    sink,
		logger:  logger,
		now:     time.Now,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("feed poller started",
		"sources", len(p.sources),
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("feed poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop. A cycle that overruns Interval is followed
// immediately by the next one.
func (p *Poller) run() {
	defer p.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-timer.C:
		}

		start := time.Now()
		p.PollOnce(p.ctx)

		wait := p.cfg.Interval - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

// PollOnce runs a single cycle over all sources.
func (p *Poller) PollOnce(ctx context.Context) CycleStats {
	start := time.Now()
	today := pubdate.Day(p.now())

	results := make([][]Entry, len(p.sources))
	var failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)
	for i, src := range p.sources {
		g.Go(func() error {
			entries, err := p.fetchSource(ctx, src)
			if err != nil {
				p.logger.Warn("failed to fetch source",
					"source", src.String(),
					"url", src.URL,
					"err", err,
				)
				failed.Add(1)
				return nil
			}
			results[i] = entries
			return nil
		})
	}
	_ = g.Wait()

	stats := CycleStats{
		Sources: len(p.sources),
		Failed:  int(failed.Load()),
	}

	// Sources are merged in configuration order so insertion order is
	// deterministic regardless of fetch completion order.
	for i, entries := range results {
		for _, e := range entries {
			stats.Entries++
			p.ingest(p.sources[i], e, today, &stats)
		}
	}

	level := slog.LevelDebug
	if stats.Added > 0 || stats.Failed > 0 {
		level = slog.LevelInfo
	}
	p.logger.Log(ctx, level, "poll cycle complete",
		"sources", stats.Sources,
		"failed", stats.Failed,
		"entries", stats.Entries,
		"added", stats.Added,
		"duplicates", stats.Duplicates,
		"duration", time.Since(start),
	)

	return stats
}

// fetchSource fetches one source under the per-source timeout. A panicking
// parser is reported as an error for that source only.
func (p *Poller) fetchSource(ctx context.Context, src Source) (entries []Entry, err error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			entries = nil
			err = &SourceError{Source: src, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	return p.fetcher.Fetch(ctx, src)
}

// ingest normalizes e and offers it to the sink if it was published today.
func (p *Poller) ingest(src Source, e Entry, today time.Time, stats *CycleStats) {
	if e.Published == "" {
		stats.Undated++
		return
	}

	at, err := pubdate.Parse(e.Published, p.cfg.Layouts)
	if err != nil {
		p.logger.Warn("date parsing error",
			"source", src.String(),
			"title", e.Title,
			"published", e.Published,
			"err", err,
		)
		stats.Unparseable++
		return
	}

	if !pubdate.Day(at).Equal(today) {
		stats.NotToday++
		return
	}

	switch p.sink.TryAdd(article.Article{Title: e.Title, Link: e.Link, Published: e.Published}) {
	case article.Added:
		stats.Added++
		p.logger.Debug("added article", "source", src.String(), "title", e.Title)
	case article.Duplicate:
		stats.Duplicates++
	}
}
