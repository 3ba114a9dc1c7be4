package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pariscan/pariscan/internal/domain"
)

// AgentHandler serves per-agent stats and history.
type AgentHandler struct {
	reports ReportSource
	store   domain.ScanStore // nil when Postgres is disabled
	logger  *slog.Logger
}

// NewAgentHandler creates an AgentHandler. store may be nil, in which case
// the history endpoint reports 501.
func NewAgentHandler(reports ReportSource, store domain.ScanStore, logger *slog.Logger) *AgentHandler {
	return &AgentHandler{
		reports: reports,
		store:   store,
		logger:  logHandler(logger, "agent"),
	}
}

// GetAgent returns the latest-scan stats for one wallet, including its open
// and resolved positions.
// GET /api/agents/{wallet}
func (h *AgentHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(w, r)
	if !ok {
		return
	}

	report, err := h.reports.Get(r.Context())
	if err != nil {
		reportError(w, r, h.logger, err)
		return
	}

	for i := range report.Leaderboard {
		if report.Leaderboard[i].Wallet == wallet {
			writeJSON(w, http.StatusOK, map[string]any{
				"scan_id": report.ScanID,
				"agent":   report.Leaderboard[i],
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "agent not found in latest scan")
}

// ListHistory returns the stored stats rows for one wallet across past scans,
// newest first.
// GET /api/agents/{wallet}/history?limit=50&offset=0
func (h *AgentHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "scan history requires postgres")
		return
	}

	wallet, ok := walletParam(w, r)
	if !ok {
		return
	}

	history, err := h.store.ListAgentHistory(r.Context(), wallet, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list agent history failed",
			slog.String("wallet", wallet.String()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list agent history")
		return
	}
	if history == nil {
		history = []domain.AgentStats{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"wallet":  wallet.String(),
		"history": history,
	})
}

// walletParam parses the {wallet} path segment as a base58 public key.
func walletParam(w http.ResponseWriter, r *http.Request) (domain.PublicKey, bool) {
	wallet, err := domain.PublicKeyFromBase58(pathParam(r, "wallet"))
	if err != nil {
		if errors.Is(err, domain.ErrBadKeyLength) {
			writeError(w, http.StatusBadRequest, "wallet must be a 32-byte base58 key")
		} else {
			writeError(w, http.StatusBadRequest, "invalid wallet address")
		}
		return domain.PublicKey{}, false
	}
	return wallet, true
}
