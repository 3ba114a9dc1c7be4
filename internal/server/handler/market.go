package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pariscan/pariscan/internal/domain"
)

// MarketHandler serves per-market views from the latest report.
type MarketHandler struct {
	reports ReportSource
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler backed by the given report source.
func NewMarketHandler(reports ReportSource, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		reports: reports,
		logger:  logHandler(logger, "market"),
	}
}

// listMarketsResponse wraps the list endpoints' output with metadata.
type listMarketsResponse struct {
	ScanID  string              `json:"scan_id"`
	Markets []domain.MarketView `json:"markets"`
	Total   int                 `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

// ListActive returns markets still accepting or holding open bets, sorted by
// pool size descending.
// GET /api/markets/active?limit=50&offset=0
func (h *MarketHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(report domain.Report) []domain.MarketView {
		return report.ActiveMarkets
	})
}

// ListResolved returns settled markets sorted by pool size descending.
// GET /api/markets/resolved?limit=50&offset=0
func (h *MarketHandler) ListResolved(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(report domain.Report) []domain.MarketView {
		return report.ResolvedMarkets
	})
}

func (h *MarketHandler) list(w http.ResponseWriter, r *http.Request, pick func(domain.Report) []domain.MarketView) {
	report, err := h.reports.Get(r.Context())
	if err != nil {
		reportError(w, r, h.logger, err)
		return
	}

	opts := parseListOpts(r)
	views := pick(report)

	writeJSON(w, http.StatusOK, listMarketsResponse{
		ScanID:  report.ScanID,
		Markets: paginate(views, opts),
		Total:   len(views),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}

// GetMarket returns a single market view by its numeric on-chain id. Binary
// and race markets have separate id keyspaces, so ?type=race disambiguates;
// the default searches binary markets first.
// GET /api/markets/{id}?type=binary|race
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(pathParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "market id must be a non-negative integer")
		return
	}

	var want domain.MarketType
	switch t := r.URL.Query().Get("type"); t {
	case "", "binary":
		want = domain.MarketTypeBinary
	case "race":
		want = domain.MarketTypeRace
	default:
		writeError(w, http.StatusBadRequest, "type must be binary or race")
		return
	}

	report, err := h.reports.Get(r.Context())
	if err != nil {
		reportError(w, r, h.logger, err)
		return
	}

	for _, views := range [][]domain.MarketView{report.ActiveMarkets, report.ResolvedMarkets} {
		for i := range views {
			if views[i].MarketID == id && views[i].Type == want {
				writeJSON(w, http.StatusOK, views[i])
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "market not found")
}
