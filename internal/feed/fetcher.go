package feed

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Source is one configured feed.
type Source struct {
	Name string
	URL  string
}

func (s Source) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// Entry is a feed item as published, before date normalization.
type Entry struct {
	Title     string
	Link      string
	Published string // Raw publication date, "" if the item has none
}

// SourceError reports a source that could not be fetched or parsed.
type SourceError struct {
	Source Source
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the current entries of a source.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) ([]Entry, error)
}

// FetcherFunc is a function adapter for Fetcher.
type FetcherFunc func(context.Context, Source) ([]Entry, error)

func (f FetcherFunc) Fetch(ctx context.Context, src Source) ([]Entry, error) {
	return f(ctx, src)
}

// RSSFetcher downloads with Client and parses RSS, Atom or JSON feeds.
type RSSFetcher struct {
	client *Client
}

// NewRSSFetcher creates an RSSFetcher. A nil client uses NewClient defaults.
func NewRSSFetcher(client *Client) *RSSFetcher {
	if client == nil {
		client = NewClient()
	}
	return &RSSFetcher{client: client}
}

// Fetch returns the entries of src in document order.
func (f *RSSFetcher) Fetch(ctx context.Context, src Source) ([]Entry, error) {
	body, err := f.client.Get(ctx, src.URL)
	if err != nil {
		return nil, &SourceError{Source: src, Err: err}
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &SourceError{Source: src, Err: fmt.Errorf("parse feed: %w", err)}
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, Entry{
			Title:     item.Title,
			Link:      item.Link,
			Published: strings.TrimSpace(item.Published),
		})
	}
	return entries, nil
}
