// Package handler contains the HTTP handlers for the read-only API. Every
// endpoint serves projections of the latest cached report; nothing here
// writes on-chain or mutates the snapshot.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pariscan/pariscan/internal/domain"
)

// ReportSource provides the latest built report. Satisfied by the Redis
// report cache.
type ReportSource interface {
	Get(ctx context.Context) (domain.Report, error)
}

// ReportHandler serves the leaderboard and report-level endpoints.
type ReportHandler struct {
	reports ReportSource
	logger  *slog.Logger
}

// NewReportHandler creates a ReportHandler backed by the given report source.
func NewReportHandler(reports ReportSource, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logHandler(logger, "report"),
	}
}

// leaderboardResponse wraps the leaderboard endpoint output with scan
// metadata.
type leaderboardResponse struct {
	ScanID      string              `json:"scan_id"`
	GeneratedAt string              `json:"generated_at"`
	Agents      []domain.AgentStats `json:"agents"`
	Total       int                 `json:"total"`
}

// Leaderboard returns the agents of the latest scan ranked by net P&L.
// GET /api/leaderboard?limit=50&offset=0
func (h *ReportHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}

	opts := parseListOpts(r)
	agents := paginate(report.Leaderboard, opts)

	writeJSON(w, http.StatusOK, leaderboardResponse{
		ScanID:      report.ScanID,
		GeneratedAt: report.GeneratedAt.Format(timeFormat),
		Agents:      agents,
		Total:       len(report.Leaderboard),
	})
}

// Totals returns snapshot-level aggregates for the latest scan.
// GET /api/report/totals
func (h *ReportHandler) Totals(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scan_id":      report.ScanID,
		"generated_at": report.GeneratedAt.Format(timeFormat),
		"totals":       report.Totals,
	})
}

// latest fetches the cached report, writing the error response on failure.
func (h *ReportHandler) latest(w http.ResponseWriter, r *http.Request) (domain.Report, bool) {
	report, err := h.reports.Get(r.Context())
	if err != nil {
		reportError(w, r, h.logger, err)
		return domain.Report{}, false
	}
	return report, true
}

// paginate applies list options to a slice by value.
func paginate[T any](items []T, opts domain.ListOpts) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
