// Package server exposes the read-only HTTP + WebSocket API over the latest
// scan report.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pariscan/pariscan/internal/domain"
	"github.com/pariscan/pariscan/internal/server/handler"
	"github.com/pariscan/pariscan/internal/server/middleware"
	"github.com/pariscan/pariscan/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// Rate limiting applies per client IP; disabled when RateLimiter is nil
	// or RateLimit is zero.
	RateLimiter domain.RateLimiter
	RateLimit   int
	RateWindow  time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Report  *handler.ReportHandler
	Markets *handler.MarketHandler
	Agents  *handler.AgentHandler
	Scans   *handler.ScanHandler
}

// Server is the headless HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth, rate limiting) and attaches
// the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.Health)

	// Report endpoints.
	mux.HandleFunc("GET /api/leaderboard", handlers.Report.Leaderboard)
	mux.HandleFunc("GET /api/report/totals", handlers.Report.Totals)

	// Market endpoints.
	mux.HandleFunc("GET /api/markets/active", handlers.Markets.ListActive)
	mux.HandleFunc("GET /api/markets/resolved", handlers.Markets.ListResolved)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)

	// Agent endpoints.
	mux.HandleFunc("GET /api/agents/{wallet}", handlers.Agents.GetAgent)
	mux.HandleFunc("GET /api/agents/{wallet}/history", handlers.Agents.ListHistory)

	// Scan history and manual trigger.
	mux.HandleFunc("GET /api/scans", handlers.Scans.ListRuns)
	mux.HandleFunc("GET /api/scans/{id}", handlers.Scans.GetRun)
	mux.HandleFunc("POST /api/scans/trigger", handlers.Scans.TriggerScan)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)

	if cfg.RateLimiter != nil && cfg.RateLimit > 0 {
		h = middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit, cfg.RateWindow)(h)
	}

	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
