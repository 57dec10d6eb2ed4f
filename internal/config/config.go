package config

import "time"

// DeskConfig is the root configuration for the desk service.
type DeskConfig struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Articles ArticlesConfig `yaml:"articles"`
	Rollover RolloverConfig `yaml:"rollover"`
	Options  OptionsConfig  `yaml:"options"`
	Alpaca   AlpacaConfig   `yaml:"alpaca"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FeedsConfig holds RSS poller settings.
type FeedsConfig struct {
	Sources        []SourceConfig `yaml:"sources"`
	Interval       time.Duration  `yaml:"interval"`
	Timeout        time.Duration  `yaml:"timeout"`         // Per-source budget, retries included
	RequestTimeout time.Duration  `yaml:"request_timeout"` // Per HTTP attempt, below Timeout
	Concurrency    int            `yaml:"concurrency"`
	MaxRetries     int            `yaml:"max_retries"`
	RetryBackoff   time.Duration  `yaml:"retry_backoff"`
	UserAgent      string         `yaml:"user_agent"`
}

// SourceConfig is one RSS feed.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ArticlesConfig holds article store settings.
type ArticlesConfig struct {
	Capacity int `yaml:"capacity"`
}

// RolloverConfig holds daily reset settings.
type RolloverConfig struct {
	Interval time.Duration `yaml:"interval"` // How often the UTC date is checked
}

// OptionsConfig holds options snapshot fetcher and GEX settings.
type OptionsConfig struct {
	Symbol       string        `yaml:"symbol"`
	Interval     time.Duration `yaml:"interval"`
	Timeout      time.Duration `yaml:"timeout"`       // Underlying close lookup
	ChainTimeout time.Duration `yaml:"chain_timeout"` // Whole option chain lookup
	MaxAttempts  int           `yaml:"max_attempts"`
	Backoff      time.Duration `yaml:"backoff"`
	Window       float64       `yaml:"window"` // Strike half-width around the underlying
}

// AlpacaConfig holds market data API credentials.
type AlpacaConfig struct {
	APIKey         string        `yaml:"api_key"`
	APISecret      string        `yaml:"api_secret"`
	DataURL        string        `yaml:"data_url"`
	BatchSize      int           `yaml:"batch_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // Per SDK request
}

// HasCredentials reports whether both the key and the secret are set.
// Without them the options fetcher still runs, but every request fails.
func (a AlpacaConfig) HasCredentials() bool {
	return a.APIKey != "" && a.APISecret != ""
}
