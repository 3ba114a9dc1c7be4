package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pariscan/pariscan/internal/pipeline"
	"github.com/pariscan/pariscan/internal/server"
	"github.com/pariscan/pariscan/internal/server/handler"
	"github.com/pariscan/pariscan/internal/server/ws"
)

// ScanMode performs a single sweep and exits. Useful for cron-driven
// deployments and smoke tests.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")
	return a.buildOrchestrator(deps).RunOnce(ctx)
}

// ServeMode runs the API and WebSocket hub only. Another process (or a cron
// job in scan mode) keeps the report cache fresh.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, nil)
	return g.Wait()
}

// FullMode runs the scan loop and the API in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	orch := a.buildOrchestrator(deps)
	g.Go(func() error {
		return orch.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, orch)
	}

	return g.Wait()
}

// buildOrchestrator assembles the scan pipeline from the wired dependencies.
func (a *App) buildOrchestrator(deps *Dependencies) *pipeline.Orchestrator {
	scanner := pipeline.NewScanner(
		deps.RPC,
		a.cfg.Solana.ProgramID,
		a.cfg.Scanner.DecodeShards,
		a.logger,
	)
	publisher := pipeline.NewPublisher(
		deps.ReportCache,
		deps.ScanStore,
		deps.SignalBus,
		deps.Archiver,
		deps.Notifier,
		a.logger,
	)
	return pipeline.NewOrchestrator(scanner, publisher, a.cfg.Scanner.Interval.Duration, a.logger)
}

// startHTTPServer adds the HTTP server and WebSocket hub goroutines to the
// given errgroup. trigger is optional; when non-nil, POST /api/scans/trigger
// runs one sweep in-process.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, trigger handler.ScanTrigger) {
	health := handler.NewHealthHandler(a.logger).
		WithCheck("rpc", deps.RPC.Health)
	if deps.RedisPing != nil {
		health = health.WithCheck("redis", deps.RedisPing)
	}

	hub := ws.NewHub(deps.SignalBus, deps.ReportCache, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:  health,
		Report:  handler.NewReportHandler(deps.ReportCache, a.logger),
		Markets: handler.NewMarketHandler(deps.ReportCache, a.logger),
		Agents:  handler.NewAgentHandler(deps.ReportCache, deps.ScanStore, a.logger),
		Scans:   handler.NewScanHandler(deps.ScanStore, trigger, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimiter: deps.RateLimiter,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	// Shut the server down when the group context is cancelled.
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
		return nil
	})
}
