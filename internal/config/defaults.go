package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultLogLevel           = "info"
	DefaultServerAddr         = ":8080"
	DefaultReadTimeout        = 10 * time.Second
	DefaultWriteTimeout       = 30 * time.Second
	DefaultShutdownTimeout    = 10 * time.Second
	DefaultFeedInterval       = 5 * time.Second
	DefaultFeedTimeout        = 10 * time.Second
	DefaultFeedRequestTimeout = 4 * time.Second
	DefaultFeedConcurrency    = 4
	DefaultFeedMaxRetries     = 3
	DefaultFeedRetryBackoff   = 300 * time.Millisecond
	DefaultUserAgent          = "marketdesk/1.0"
	DefaultArticleCapacity    = 1000
	DefaultRolloverInterval   = 60 * time.Second
	DefaultOptionsSymbol      = "SPX"
	DefaultOptionsInterval    = 60 * time.Second
	DefaultOptionsTimeout     = 10 * time.Second
	DefaultChainTimeout       = 2 * time.Minute
	DefaultOptionsMaxAttempts = 5
	DefaultOptionsBackoff     = 60 * time.Second
	DefaultGEXWindow          = 125.0
	DefaultAlpacaBatchSize    = 100
	DefaultAlpacaTimeout      = 10 * time.Second
)

// DefaultSources is the feed list used when none is configured.
var DefaultSources = []SourceConfig{
	{Name: "yahoo-finance", URL: "https://finance.yahoo.com/news/rss"},
	{Name: "investing-ideas", URL: "https://www.investing.com/rss/market_overview_investing_ideas.rss"},
	{Name: "investing-opinion", URL: "https://www.investing.com/rss/market_overview_Opinion.rss"},
	{Name: "investing-fundamental", URL: "https://www.investing.com/rss/market_overview_Fundamental.rss"},
	{Name: "investing-technical", URL: "https://www.investing.com/rss/market_overview_Technical.rss"},
	{Name: "cnbc-finance", URL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=20910258"},
	{Name: "dowjones-economy", URL: "https://feeds.content.dowjones.io/public/rss/socialeconomyfeed"},
	{Name: "cnbc-markets", URL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=10000664"},
	{Name: "seekingalpha-currents", URL: "https://seekingalpha.com/market_currents.xml"},
	{Name: "nasdaq-releases", URL: "https://ir.nasdaq.com/rss/news-releases.xml?items=15"},
	{Name: "nasdaq-financial", URL: "https://ir.nasdaq.com/rss/news-releases.xml?items=15&category=Financial"},
	{Name: "marketwatch-bulletins", URL: "https://feeds.content.dowjones.io/public/rss/mw_bulletins"},
}

func (c *DeskConfig) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Feeds defaults
	if len(c.Feeds.Sources) == 0 {
		c.Feeds.Sources = append([]SourceConfig(nil), DefaultSources...)
	}
	for i := range c.Feeds.Sources {
		if c.Feeds.Sources[i].Name == "" {
			c.Feeds.Sources[i].Name = c.Feeds.Sources[i].URL
		}
	}
	if c.Feeds.Interval == 0 {
		c.Feeds.Interval = DefaultFeedInterval
	}
	if c.Feeds.Timeout == 0 {
		c.Feeds.Timeout = DefaultFeedTimeout
	}
	if c.Feeds.RequestTimeout == 0 {
		c.Feeds.RequestTimeout = DefaultFeedRequestTimeout
		if c.Feeds.RequestTimeout > c.Feeds.Timeout {
			c.Feeds.RequestTimeout = c.Feeds.Timeout
		}
	}
	if c.Feeds.Concurrency == 0 {
		c.Feeds.Concurrency = DefaultFeedConcurrency
	}
	if c.Feeds.MaxRetries == 0 {
		c.Feeds.MaxRetries = DefaultFeedMaxRetries
	}
	if c.Feeds.RetryBackoff == 0 {
		c.Feeds.RetryBackoff = DefaultFeedRetryBackoff
	}
	if c.Feeds.UserAgent == "" {
		c.Feeds.UserAgent = DefaultUserAgent
	}

	if c.Articles.Capacity == 0 {
		c.Articles.Capacity = DefaultArticleCapacity
	}
	if c.Rollover.Interval == 0 {
		c.Rollover.Interval = DefaultRolloverInterval
	}

	// Options defaults
	if c.Options.Symbol == "" {
		c.Options.Symbol = DefaultOptionsSymbol
	}
	if c.Options.Interval == 0 {
		c.Options.Interval = DefaultOptionsInterval
	}
	if c.Options.Timeout == 0 {
		c.Options.Timeout = DefaultOptionsTimeout
	}
	if c.Options.ChainTimeout == 0 {
		c.Options.ChainTimeout = DefaultChainTimeout
	}
	if c.Options.MaxAttempts == 0 {
		c.Options.MaxAttempts = DefaultOptionsMaxAttempts
	}
	if c.Options.Backoff == 0 {
		c.Options.Backoff = DefaultOptionsBackoff
	}
	if c.Options.Window == 0 {
		c.Options.Window = DefaultGEXWindow
	}

	if c.Alpaca.BatchSize == 0 {
		c.Alpaca.BatchSize = DefaultAlpacaBatchSize
	}
	if c.Alpaca.RequestTimeout == 0 {
		c.Alpaca.RequestTimeout = DefaultAlpacaTimeout
	}
}
