package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pariscan/pariscan/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeReports struct {
	report domain.Report
	err    error
}

func (f *fakeReports) Get(context.Context) (domain.Report, error) {
	return f.report, f.err
}

func testWallet(b byte) domain.PublicKey {
	var pk domain.PublicKey
	pk[0] = b
	return pk
}

func testReport() domain.Report {
	return domain.Report{
		ScanID:      "scan-1",
		GeneratedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
		Leaderboard: []domain.AgentStats{
			{Wallet: testWallet(1), DisplayName: "alice", NetPnL: decimal.RequireFromString("3")},
			{Wallet: testWallet(2), DisplayName: "bob", NetPnL: decimal.RequireFromString("-1")},
		},
		ActiveMarkets: []domain.MarketView{
			{MarketID: 10, Type: domain.MarketTypeBinary, Question: "open one"},
			{MarketID: 10, Type: domain.MarketTypeRace, Question: "open race"},
		},
		ResolvedMarkets: []domain.MarketView{
			{MarketID: 11, Type: domain.MarketTypeBinary, Question: "done one"},
		},
		Totals: domain.ReportTotals{Agents: 2, Markets: 2, RaceMarkets: 1},
	}
}

func serveMux(reports ReportSource) *http.ServeMux {
	mux := http.NewServeMux()
	rh := NewReportHandler(reports, testLogger())
	mh := NewMarketHandler(reports, testLogger())
	ah := NewAgentHandler(reports, nil, testLogger())
	mux.HandleFunc("GET /api/leaderboard", rh.Leaderboard)
	mux.HandleFunc("GET /api/report/totals", rh.Totals)
	mux.HandleFunc("GET /api/markets/active", mh.ListActive)
	mux.HandleFunc("GET /api/markets/resolved", mh.ListResolved)
	mux.HandleFunc("GET /api/markets/{id}", mh.GetMarket)
	mux.HandleFunc("GET /api/agents/{wallet}", ah.GetAgent)
	mux.HandleFunc("GET /api/agents/{wallet}/history", ah.ListHistory)
	return mux
}

func doGet(t *testing.T, mux *http.ServeMux, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLeaderboard(t *testing.T) {
	mux := serveMux(&fakeReports{report: testReport()})

	rec, body := doGet(t, mux, "/api/leaderboard")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scan-1", body["scan_id"])
	assert.Equal(t, float64(2), body["total"])
	assert.Len(t, body["agents"], 2)
}

func TestLeaderboardPagination(t *testing.T) {
	mux := serveMux(&fakeReports{report: testReport()})

	_, body := doGet(t, mux, "/api/leaderboard?limit=1&offset=1")
	agents := body["agents"].([]any)
	require.Len(t, agents, 1)
	agent := agents[0].(map[string]any)
	assert.Equal(t, "bob", agent["DisplayName"])
}

func TestLeaderboardNoScanYet(t *testing.T) {
	mux := serveMux(&fakeReports{err: domain.ErrNotFound})

	rec, body := doGet(t, mux, "/api/leaderboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body["error"], "no scan")
}

func TestListMarkets(t *testing.T) {
	mux := serveMux(&fakeReports{report: testReport()})

	rec, body := doGet(t, mux, "/api/markets/active")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["markets"], 2)

	rec, body = doGet(t, mux, "/api/markets/resolved")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["markets"], 1)
}

func TestGetMarketTypeDisambiguation(t *testing.T) {
	mux := serveMux(&fakeReports{report: testReport()})

	rec, body := doGet(t, mux, "/api/markets/10")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "open one", body["Question"])

	rec, body = doGet(t, mux, "/api/markets/10?type=race")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "open race", body["Question"])

	rec, _ = doGet(t, mux, "/api/markets/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doGet(t, mux, "/api/markets/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAgent(t *testing.T) {
	mux := serveMux(&fakeReports{report: testReport()})

	rec, body := doGet(t, mux, "/api/agents/"+testWallet(1).String())
	assert.Equal(t, http.StatusOK, rec.Code)
	agent := body["agent"].(map[string]any)
	assert.Equal(t, "alice", agent["DisplayName"])

	rec, _ = doGet(t, mux, "/api/agents/"+testWallet(9).String())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doGet(t, mux, "/api/agents/not-base58!!")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgentHistoryWithoutStore(t *testing.T) {
	mux := serveMux(&fakeReports{report: testReport()})

	rec, _ := doGet(t, mux, "/api/agents/"+testWallet(1).String()+"/history")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealthDegraded(t *testing.T) {
	h := NewHealthHandler(testLogger()).
		WithCheck("rpc", func(context.Context) error { return nil }).
		WithCheck("redis", func(context.Context) error { return context.DeadlineExceeded })

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "ok", deps["rpc"])
	assert.NotEqual(t, "ok", deps["redis"])
}
