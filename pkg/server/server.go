// Package server implements a collection endpoint for the telemetry
// pipeline. It accepts batches on POST /api/evaluate, counts events per kind
// and ignores repeated deliveries of a batch it has already counted.
//
// It is meant for local development and end-to-end tests of the pipeline.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bsidebar/insights/pkg/concurrent"
	"github.com/bsidebar/insights/pkg/telemetry"
)

type Server struct {
	e *echo.Echo

	// seen holds the ids of batches already counted.
	seen   *concurrent.Map[string, struct{}]
	counts *concurrent.Map[string, int]

	mu         sync.Mutex
	batches    int
	duplicates int
	events     int
	rejected   int

	failFirst int
}

type Option func(*Server)

// WithFailFirst rejects the first n batches with a 503 so clients exercise
// their retry path.
func WithFailFirst(n int) Option {
	return func(s *Server) { s.failFirst = n }
}

func New(opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())

	s := &Server{
		e:      e,
		seen:   concurrent.NewMap[string, struct{}](),
		counts: concurrent.NewMap[string, int](),
	}
	for _, opt := range opts {
		opt(s)
	}

	group := e.Group("/api")

	// Receive a batch of events
	group.POST("/evaluate", s.evaluate)
	// Counters since start
	group.GET("/stats", s.stats)

	// Health check endpoint
	group.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := http.Server{
		Handler: s.e,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.Serve(ln); err != nil && ctx.Err() == nil {
		slog.Error("Failed to start server", "error", err)
		return err
	}

	return nil
}

func (s *Server) evaluate(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, EvaluateResponse{Success: false, Error: "invalid batch"})
	}

	for i, e := range req.Stack {
		if e.Kind == "" || (e.Value == nil && e.Values == nil) {
			slog.Debug("Rejecting malformed event", "index", i, "type", e.Kind)
			return c.JSON(http.StatusBadRequest, EvaluateResponse{Success: false, Error: "malformed event"})
		}
	}

	if s.shouldFail() {
		return c.JSON(http.StatusServiceUnavailable, EvaluateResponse{Success: false, Error: "try again later"})
	}

	id := c.Request().Header.Get(telemetry.BatchIDHeader)
	if id == "" {
		id = uuid.NewString()
	}

	if _, loaded := s.seen.LoadOrStore(id, struct{}{}); loaded {
		s.mu.Lock()
		s.duplicates++
		s.mu.Unlock()

		slog.Debug("Duplicate batch ignored", "batch_id", id)
		return c.JSON(http.StatusOK, EvaluateResponse{Success: true})
	}

	for _, e := range req.Stack {
		s.counts.Update(e.Kind, func(n int) int { return n + 1 })
	}

	s.mu.Lock()
	s.batches++
	s.events += len(req.Stack)
	s.mu.Unlock()

	slog.Debug("Batch received", "batch_id", id, "events", len(req.Stack), "tz", req.TZ)
	return c.JSON(http.StatusOK, EvaluateResponse{Success: true})
}

func (s *Server) shouldFail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejected < s.failFirst {
		s.rejected++
		return true
	}
	return false
}

func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Stats())
}

// Stats returns the counters since the server started.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Batches:    s.batches,
		Duplicates: s.duplicates,
		Rejected:   s.rejected,
		Events:     s.events,
		Kinds:      s.counts.Snapshot(),
	}
}
