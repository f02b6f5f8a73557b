package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almoxops/replen/internal/domain"
	"github.com/almoxops/replen/internal/engine"
	"github.com/almoxops/replen/internal/service"
)

type staticMovements []domain.MovementRecord

func (s staticMovements) Movements(ctx context.Context) ([]domain.MovementRecord, error) {
	return s, nil
}

type staticCatalog []domain.Item

func (s staticCatalog) Items(ctx context.Context) ([]domain.Item, error) {
	return s, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	day := func(n int) *time.Time {
		d := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
		return &d
	}
	movements := staticMovements{
		{ItemID: "A1", Timestamp: day(0), Quantity: 100},
		{ItemID: "A1", Timestamp: day(4), Quantity: -90},
	}
	catalog := staticCatalog{{ItemID: "A1", Name: "Latex gloves"}}

	svc := service.NewReportService(movements, catalog, nil)
	return NewRouter(svc, engine.DefaultParams(), []string{"*"})
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetReport(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/replen/report", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "A1", report.Rows[0].ItemID)
	assert.Equal(t, 10.0, report.Rows[0].CurrentBalance)
}

func TestGetReportInvalidMode(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/replen/report?mode=bogus", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReportInvalidHorizon(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/replen/report?horizons=7,abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAlerts(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/replen/alerts", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Alerts []domain.ReportRow `json:"alerts"`
		Count  int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// A1 burns 22.5/day against a balance of 10.
	require.Equal(t, 1, body.Count)
	assert.True(t, body.Alerts[0].Tier.NeedsAttention())
}

func TestGetHistory(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/replen/history", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		History []domain.MovementSummary `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.History, 1)
	assert.Equal(t, 90.0, body.History[0].IssueTotal)
}

func TestExportReportCSV(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/replen/report/export?format=csv", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "item_id")
	assert.Contains(t, w.Body.String(), "A1")
}

func TestExportReportBadFormat(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/replen/report/export?format=pdf", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAlertsTierFilter(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/replen/alerts?tier=warning", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Zero(t, body.Count)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/replen/alerts?tier=bogus", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
