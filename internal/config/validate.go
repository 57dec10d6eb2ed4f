package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *DeskConfig) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if len(c.Feeds.Sources) == 0 {
		return errors.New("feeds.sources must not be empty")
	}
	for i, src := range c.Feeds.Sources {
		if err := src.validate(fmt.Sprintf("feeds.sources[%d]", i)); err != nil {
			return err
		}
	}
	if c.Feeds.Interval <= 0 {
		return errors.New("feeds.interval must be > 0")
	}
	if c.Feeds.RequestTimeout <= 0 {
		return errors.New("feeds.request_timeout must be > 0")
	}
	if c.Feeds.RequestTimeout > c.Feeds.Timeout {
		return fmt.Errorf("feeds.request_timeout (%v) cannot exceed feeds.timeout (%v)", c.Feeds.RequestTimeout, c.Feeds.Timeout)
	}
	if c.Feeds.Concurrency < 1 {
		return errors.New("feeds.concurrency must be >= 1")
	}
	if c.Feeds.MaxRetries < 0 {
		return errors.New("feeds.max_retries must be >= 0")
	}

	if c.Articles.Capacity < 1 {
		return errors.New("articles.capacity must be >= 1")
	}
	if c.Rollover.Interval <= 0 {
		return errors.New("rollover.interval must be > 0")
	}

	if c.Options.Symbol == "" {
		return errors.New("options.symbol is required")
	}
	if c.Options.MaxAttempts < 1 {
		return errors.New("options.max_attempts must be >= 1")
	}
	if c.Options.Backoff < 0 {
		return errors.New("options.backoff must be >= 0")
	}
	if c.Options.Window <= 0 {
		return fmt.Errorf("options.window must be > 0, got %v", c.Options.Window)
	}

	if c.Alpaca.BatchSize < 1 {
		return errors.New("alpaca.batch_size must be >= 1")
	}

	return nil
}

func (s *SourceConfig) validate(prefix string) error {
	if s.URL == "" {
		return fmt.Errorf("%s.url is required", prefix)
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("%s.url: %w", prefix, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s.url must be http or https, got %q", prefix, s.URL)
	}
	return nil
}
