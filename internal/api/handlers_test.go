package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/config"
	"github.com/ignite/attribution-engine/internal/domain"
	"github.com/ignite/attribution-engine/internal/service/report"
)

type fakeReportService struct {
	lastOrgID string
	lastReq   report.ReportRequest

	attributionRep *report.AttributionReport
	comparisonRep  *report.ComparisonReport
	connectorRep   *report.ConnectorReport
	err            error
}

func (f *fakeReportService) AttributionReport(_ context.Context, orgID string, req report.ReportRequest) (*report.AttributionReport, error) {
	f.lastOrgID, f.lastReq = orgID, req
	return f.attributionRep, f.err
}

func (f *fakeReportService) CompareModels(_ context.Context, orgID string, req report.ReportRequest) (*report.ComparisonReport, error) {
	f.lastOrgID, f.lastReq = orgID, req
	return f.comparisonRep, f.err
}

func (f *fakeReportService) ConnectorReport(_ context.Context, orgID string, req report.ReportRequest) (*report.ConnectorReport, error) {
	f.lastOrgID, f.lastReq = orgID, req
	return f.connectorRep, f.err
}

func setupRouter(svc ReportService) http.Handler {
	return SetupRoutes(NewHandlers(svc, &config.Config{}))
}

func TestHandleAttributionReport(t *testing.T) {
	svc := &fakeReportService{
		attributionRep: &report.AttributionReport{
			Model: "last_touch",
			Channels: []domain.ChannelAttribution{
				{Source: "google", Medium: "cpc", Campaign: "spring", AttributedConversions: 3, AttributedRevenue: 450},
			},
			Summary: report.Summary{TotalConversions: 3, TotalRevenue: 450},
		},
	}
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/orgs/org-1/attribution?model=last_touch&date_from=2026-02-01&date_to=2026-03-01&window_days=14&half_life_days=3.5&source=connectors", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, "org-1", svc.lastOrgID)
	assert.Equal(t, "last_touch", svc.lastReq.Model)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), svc.lastReq.DateFrom)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), svc.lastReq.DateTo)
	assert.Equal(t, 14, svc.lastReq.WindowDays)
	assert.Equal(t, 3.5, svc.lastReq.HalfLifeDays)
	assert.Equal(t, domain.SourceConnectors, svc.lastReq.Source)

	var body report.AttributionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "last_touch", body.Model)
	require.Len(t, body.Channels, 1)
	assert.Equal(t, "google", body.Channels[0].Source)
}

func TestHandleAttributionReport_DefaultRange(t *testing.T) {
	svc := &fakeReportService{attributionRep: &report.AttributionReport{}}
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/org-1/attribution", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.WithinDuration(t, time.Now().UTC(), svc.lastReq.DateTo, 5*time.Second)
	assert.WithinDuration(t, svc.lastReq.DateTo.AddDate(0, 0, -30), svc.lastReq.DateFrom, time.Second)
}

func TestHandleAttributionReport_BadParams(t *testing.T) {
	svc := &fakeReportService{attributionRep: &report.AttributionReport{}}
	router := setupRouter(svc)

	for _, query := range []string{
		"date_from=yesterday",
		"date_to=03/01/2026",
		"window_days=two",
		"half_life_days=fast",
		"top_n=all",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/orgs/org-1/attribution?"+query, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestHandleAttributionReport_ValidationErrors(t *testing.T) {
	for _, svcErr := range []error{
		report.ErrInvalidDateRange,
		report.ErrDateRangeTooWide,
		report.ErrInvalidWindowDays,
		attribution.ErrUnknownModel,
		attribution.ErrInvalidHalfLife,
	} {
		router := setupRouter(&fakeReportService{err: svcErr})

		req := httptest.NewRequest(http.MethodGet, "/api/orgs/org-1/attribution", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, svcErr.Error())

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, svcErr.Error(), body["error"])
	}
}

func TestHandleAttributionReport_InternalErrorSanitized(t *testing.T) {
	router := setupRouter(&fakeReportService{
		err: errors.New(`pq: connection refused host=10.0.3.7 dbname=attribution`),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/org-1/attribution", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body["error"], "pq:")
	assert.NotContains(t, body["error"], "10.0.3.7")
}

func TestHandleCompareModels(t *testing.T) {
	svc := &fakeReportService{
		comparisonRep: &report.ComparisonReport{
			Models: []report.ModelChannels{
				{Model: "first_touch"},
				{Model: "last_touch"},
				{Model: "linear"},
				{Model: "time_decay"},
				{Model: "position_based"},
			},
		},
	}
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/org-9/attribution/compare?top_n=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "org-9", svc.lastOrgID)
	assert.Equal(t, 5, svc.lastReq.TopN)

	var body report.ComparisonReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Models, 5)
	assert.Equal(t, "first_touch", body.Models[0].Model)
}

func TestHandleConnectorReport(t *testing.T) {
	svc := &fakeReportService{
		connectorRep: &report.ConnectorReport{
			Results: []domain.ConnectorAttributionResult{
				{Source: "facebook", Medium: "paid", Campaign: "unknown", Method: domain.MethodClickID, AttributedConversions: 2, AttributedRevenue: 120},
			},
			Summary: attribution.ConnectorSummary{TotalConversions: 2, AttributedCount: 2, TotalRevenue: 120},
		},
	}
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/org-1/attribution/connectors", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body report.ConnectorReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, domain.MethodClickID, body.Results[0].Method)
	assert.Equal(t, 2, body.Summary.AttributedCount)
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(&fakeReportService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}
