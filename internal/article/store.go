package article

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rickgao/marketdesk/internal/pubdate"
	"github.com/rickgao/marketdesk/internal/ring"
)

// DisplayLayout is the layout of Published in snapshots.
const DisplayLayout = "2006-01-02 15:04:05"

// ErrUnknownTimezone is returned by SnapshotIn for unresolvable zone names.
var ErrUnknownTimezone = errors.New("unknown timezone")

// Article is a stored headline. Published keeps the feed's raw date string.
type Article struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// AddResult is the outcome of TryAdd.
type AddResult int

const (
	Added AddResult = iota
	Duplicate
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	default:
		return fmt.Sprintf("AddResult(%d)", int(r))
	}
}

// Config holds store configuration.
type Config struct {
	Capacity int      // Max stored articles (default: 1000)
	Layouts  []string // Publication date layouts, priority ordered
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity: 1000,
		Layouts:  pubdate.DefaultLayouts,
	}
}

// Store is a bounded, deduplicated, insertion-ordered set of articles.
type Store struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	items  *ring.Buffer[Article]
	titles map[string]struct{}
}

// NewStore creates an empty store.
func NewStore(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if len(cfg.Layouts) == 0 {
		cfg.Layouts = pubdate.DefaultLayouts
	}
	return &Store{
		cfg:    cfg,
		logger: logger,
		items:  ring.New[Article](cfg.Capacity),
		titles: make(map[string]struct{}, cfg.Capacity),
	}
}

// TryAdd stores a unless an article with the same title is present.
func (s *Store) TryAdd(a Article) AddResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.titles[a.Title]; ok {
		return Duplicate
	}

	if evicted, ok := s.items.Push(a); ok {
		delete(s.titles, evicted.Title)
	}
	s.titles[a.Title] = struct{}{}

	return Added
}

// Reset drops every article.
func (s *Store) Reset() {
	items := ring.New[Article](s.cfg.Capacity)
	titles := make(map[string]struct{}, s.cfg.Capacity)

	s.mu.Lock()
	s.items = items
	s.titles = titles
	s.mu.Unlock()
}

// Len returns the number of stored articles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Len()
}

// Snapshot returns the stored articles newest first, with Published rendered
// in loc using DisplayLayout. Articles whose date cannot be parsed are
// skipped.
func (s *Store) Snapshot(loc *time.Location) []Article {
	if loc == nil {
		loc = time.UTC
	}

	s.mu.RLock()
	items := s.items.Items()
	s.mu.RUnlock()

	type dated struct {
		article Article
		at      time.Time
	}

	out := make([]dated, 0, len(items))
	for _, a := range items {
		at, err := pubdate.Parse(a.Published, s.cfg.Layouts)
		if err != nil {
			s.logger.Warn("skipping article with unparseable date",
				"title", a.Title,
				"published", a.Published,
				"err", err,
			)
			continue
		}
		a.Published = at.In(loc).Format(DisplayLayout)
		out = append(out, dated{article: a, at: at})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].at.After(out[j].at)
	})

	result := make([]Article, len(out))
	for i, d := range out {
		result[i] = d.article
	}
	return result
}

// SnapshotIn is Snapshot with loc resolved from an IANA zone name. An empty
// name means UTC.
func (s *Store) SnapshotIn(tz string) ([]Article, error) {
	if tz == "" {
		return s.Snapshot(time.UTC), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, tz)
	}
	return s.Snapshot(loc), nil
}
