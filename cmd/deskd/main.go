package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/marketdesk/internal/alpacadata"
	"github.com/rickgao/marketdesk/internal/article"
	"github.com/rickgao/marketdesk/internal/config"
	"github.com/rickgao/marketdesk/internal/desk"
	"github.com/rickgao/marketdesk/internal/feed"
	"github.com/rickgao/marketdesk/internal/options"
	"github.com/rickgao/marketdesk/internal/rollover"
	"github.com/rickgao/marketdesk/internal/server"
	"github.com/rickgao/marketdesk/internal/version"
)

// component is a background service with the Start/Stop lifecycle.
type component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "configs/deskd.local.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to optional .env file")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	logger := newLogger("info")
	slog.SetDefault(logger)

	logger.Info("starting deskd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	if err := config.LoadDotEnv(*envPath); err != nil {
		logger.Error("failed to load env file", "err", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger = newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"sources", len(cfg.Feeds.Sources),
		"symbol", cfg.Options.Symbol,
		"addr", cfg.Server.Addr,
	)

	// Shared state
	store := article.NewStore(article.Config{Capacity: cfg.Articles.Capacity}, logger.With("component", "articles"))
	slot := &options.Slot{}

	// RSS poller
	client := feed.NewClient(
		feed.WithLogger(logger),
		feed.WithTimeout(cfg.Feeds.RequestTimeout),
		feed.WithRetries(cfg.Feeds.MaxRetries, cfg.Feeds.RetryBackoff),
		feed.WithUserAgent(cfg.Feeds.UserAgent),
	)
	sources := make([]feed.Source, len(cfg.Feeds.Sources))
	for i, src := range cfg.Feeds.Sources {
		sources[i] = feed.Source{Name: src.Name, URL: src.URL}
	}
	pollerCfg := feed.DefaultConfig()
	pollerCfg.Interval = cfg.Feeds.Interval
	pollerCfg.Timeout = cfg.Feeds.Timeout
	pollerCfg.Concurrency = cfg.Feeds.Concurrency
	poller := feed.New(pollerCfg, feed.NewRSSFetcher(client), sources, store, logger.With("component", "feeds"))

	// Daily reset
	resetter := rollover.New(rollover.Config{Interval: cfg.Rollover.Interval}, store, logger.With("component", "rollover"))

	// Options snapshot fetcher. Missing credentials are not fatal: news
	// keeps flowing and /api/gex_data reports unavailable.
	if !cfg.Alpaca.HasCredentials() {
		logger.Warn("alpaca credentials not set, options data will be unavailable",
			"hint", "set ALPACA_API_KEY and ALPACA_SECRET_KEY",
		)
	}
	provider := alpacadata.New(alpacadata.Config{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		DataURL:   cfg.Alpaca.DataURL,
		BatchSize: cfg.Alpaca.BatchSize,

		RequestTimeout: cfg.Alpaca.RequestTimeout,
	}, logger.With("component", "alpaca"))

	fetcherCfg := options.DefaultConfig()
	fetcherCfg.Symbol = cfg.Options.Symbol
	fetcherCfg.Interval = cfg.Options.Interval
	fetcherCfg.Timeout = cfg.Options.Timeout
	fetcherCfg.ChainTimeout = cfg.Options.ChainTimeout
	fetcherCfg.Retry.MaxAttempts = cfg.Options.MaxAttempts
	fetcherCfg.Retry.Backoff = cfg.Options.Backoff
	fetcher := options.NewFetcher(fetcherCfg, provider, slot, logger.With("component", "options"))

	// HTTP API
	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, desk.New(store, slot, cfg.Options.Window), logger.With("component", "http"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := resetter.Start(); err != nil {
		logger.Error("failed to start rollover scheduler", "err", err)
		os.Exit(1)
	}
	defer resetter.Stop()

	components := []component{srv, poller, fetcher}
	started := make([]component, 0, len(components))
	for _, c := range components {
		if err := c.Start(ctx); err != nil {
			logger.Error("failed to start component", "err", err)
			shutdown(logger, started, cfg.Server.ShutdownTimeout)
			os.Exit(1)
		}
		started = append(started, c)
	}

	logger.Info("deskd running", "addr", cfg.Server.Addr)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")
	shutdown(logger, started, cfg.Server.ShutdownTimeout)
	logger.Info("deskd stopped")
}

// shutdown stops components concurrently within timeout.
func shutdown(logger *slog.Logger, components []component, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var g errgroup.Group
	for _, c := range components {
		g.Go(func() error {
			return c.Stop(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("shutdown incomplete", "err", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
}
