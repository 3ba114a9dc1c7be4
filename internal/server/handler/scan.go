package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pariscan/pariscan/internal/domain"
)

// ScanTrigger runs one sweep on demand. Satisfied by the pipeline
// orchestrator.
type ScanTrigger interface {
	RunOnce(ctx context.Context) error
}

// ScanHandler serves scan-run history and the manual trigger endpoint.
type ScanHandler struct {
	store   domain.ScanStore // nil when Postgres is disabled
	trigger ScanTrigger      // nil when the pipeline is not running in-process
	logger  *slog.Logger
}

// NewScanHandler creates a ScanHandler. Both dependencies may be nil.
func NewScanHandler(store domain.ScanStore, trigger ScanTrigger, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		store:   store,
		trigger: trigger,
		logger:  logHandler(logger, "scan"),
	}
}

// ListRuns returns past scan runs, newest first.
// GET /api/scans?limit=50&offset=0
func (h *ScanHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "scan history requires postgres")
		return
	}

	runs, err := h.store.ListRuns(r.Context(), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list scan runs failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list scan runs")
		return
	}
	if runs == nil {
		runs = []domain.ScanRun{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// GetRun returns a single scan run by id.
// GET /api/scans/{id}
func (h *ScanHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "scan history requires postgres")
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing scan id")
		return
	}

	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scan run not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get scan run failed",
			slog.String("scan_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get scan run")
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// TriggerScan runs one sweep synchronously and reports whether it succeeded.
// POST /api/scans/trigger
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		writeError(w, http.StatusNotImplemented, "pipeline is not running in this process")
		return
	}

	h.logger.InfoContext(r.Context(), "handler: manual scan requested")

	if err := h.trigger.RunOnce(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: manual scan failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "scan failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"completed_at": time.Now().UTC().Format(timeFormat),
	})
}
