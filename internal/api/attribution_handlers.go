package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/attribution-engine/internal/domain"
	"github.com/ignite/attribution-engine/internal/service/report"
)

// defaultReportRangeDays is the lookback applied when the request carries no
// explicit date range.
const defaultReportRangeDays = 30

// HandleAttributionReport serves GET /api/orgs/{orgID}/attribution.
func (h *Handlers) HandleAttributionReport(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	req, err := parseReportRequest(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rep, err := h.reports.AttributionReport(r.Context(), orgID, req)
	if err != nil {
		respondReportError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// HandleCompareModels serves GET /api/orgs/{orgID}/attribution/compare.
func (h *Handlers) HandleCompareModels(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	req, err := parseReportRequest(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rep, err := h.reports.CompareModels(r.Context(), orgID, req)
	if err != nil {
		respondReportError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// HandleConnectorReport serves GET /api/orgs/{orgID}/attribution/connectors.
func (h *Handlers) HandleConnectorReport(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	req, err := parseReportRequest(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rep, err := h.reports.ConnectorReport(r.Context(), orgID, req)
	if err != nil {
		respondReportError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// parseReportRequest builds a report request from query parameters. Absent
// dates default to the trailing 30 days.
func parseReportRequest(r *http.Request) (report.ReportRequest, error) {
	q := r.URL.Query()
	req := report.ReportRequest{
		Model:  q.Get("model"),
		Source: domain.ConversionSource(q.Get("source")),
	}

	now := time.Now().UTC()
	req.DateTo = now
	req.DateFrom = now.AddDate(0, 0, -defaultReportRangeDays)

	var err error
	if v := q.Get("date_from"); v != "" {
		if req.DateFrom, err = parseDate(v); err != nil {
			return req, fmt.Errorf("invalid date_from: %q", v)
		}
	}
	if v := q.Get("date_to"); v != "" {
		if req.DateTo, err = parseDate(v); err != nil {
			return req, fmt.Errorf("invalid date_to: %q", v)
		}
	}
	if v := q.Get("window_days"); v != "" {
		if req.WindowDays, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("invalid window_days: %q", v)
		}
	}
	if v := q.Get("half_life_days"); v != "" {
		if req.HalfLifeDays, err = strconv.ParseFloat(v, 64); err != nil {
			return req, fmt.Errorf("invalid half_life_days: %q", v)
		}
	}
	if v := q.Get("top_n"); v != "" {
		if req.TopN, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("invalid top_n: %q", v)
		}
	}
	return req, nil
}

// parseDate accepts RFC3339 timestamps or bare dates. Bare dates are read as
// midnight UTC.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
