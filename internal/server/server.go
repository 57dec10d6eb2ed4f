// Package server exposes the desk over a read-only JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/marketdesk/internal/article"
	"github.com/rickgao/marketdesk/internal/desk"
	"github.com/rickgao/marketdesk/internal/version"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr            string        // Listen address (default: :8080)
	ReadTimeout     time.Duration // Default: 10s
	WriteTimeout    time.Duration // Default: 30s
	ShutdownTimeout time.Duration // Default: 10s
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server serves the articles, GEX and health endpoints.
type Server struct {
	cfg    Config
	desk   *desk.Desk
	logger *slog.Logger
	engine *gin.Engine

	mu   sync.Mutex
	srv  *http.Server
	addr net.Addr
	done chan error
}

// New creates a Server reading from d.
func New(cfg Config, d *desk.Desk, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		desk:   d,
		logger: logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.GET("/articles", s.articles)
	api.GET("/gex_data", s.gexData)

	return r
}

// Start begins listening. Serve errors after startup are returned by Stop.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.srv = srv
	s.addr = ln.Addr()
	s.done = make(chan error, 1)
	s.mu.Unlock()

	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			s.logger.Error("http server error", "err", err)
		}
		s.done <- err
	}()

	s.logger.Info("http server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// Stop gracefully shuts down the server, waiting at most ShutdownTimeout
// for in-flight requests. Connections still open after that are closed.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}

	if err := srv.Shutdown(ctx); err != nil {
		srv.Close()
		<-done
		return err
	}
	err := <-done
	s.logger.Info("http server stopped")
	return err
}

// GET /api/articles?timezone=<IANA zone>
func (s *Server) articles(c *gin.Context) {
	tz := c.DefaultQuery("timezone", "UTC")

	items, err := s.desk.Articles(tz)
	if err != nil {
		if errors.Is(err, article.ErrUnknownTimezone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// gexResponse is the /api/gex_data body.
type gexResponse struct {
	Strikes       []int     `json:"strikes"`
	GammaExposure []float64 `json:"gamma_exposure"`
	SpotPrice     float64   `json:"spx_price"`
	CurrentTime   string    `json:"current_time"`
	TotalGEX      float64   `json:"total_gex"`
	Date          string    `json:"date"`
	Symbol        string    `json:"symbol"`
}

// GET /api/gex_data
func (s *Server) gexData(c *gin.Context) {
	res, err := s.desk.GEX()
	if err != nil {
		if !errors.Is(err, desk.ErrUnavailable) {
			s.logger.Error("failed to compute GEX", "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch GEX data"})
		return
	}

	c.JSON(http.StatusOK, gexResponse{
		Strikes:       res.Strikes,
		GammaExposure: res.Exposures,
		SpotPrice:     res.UnderlyingPrice,
		CurrentTime:   res.ComputedAt.Format(article.DisplayLayout),
		TotalGEX:      res.Aggregate,
		Date:          res.Date.Format(time.DateOnly),
		Symbol:        res.Symbol,
	})
}

// GET /health
func (s *Server) health(c *gin.Context) {
	status := "healthy"

	articles := s.desk.ArticleCount()
	snapshot := s.desk.SnapshotVersion()
	if snapshot == 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"version": version.Get(),
		"components": gin.H{
			"articles": gin.H{"count": articles},
			"options":  gin.H{"snapshot_version": snapshot},
		},
	})
}

// requestLogger logs failed and slow requests.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if c.Writer.Status() >= http.StatusBadRequest || duration > time.Second {
			s.logger.Warn("http request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", c.Writer.Status(),
				"duration", duration,
			)
		}
	}
}
