package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ignite/attribution-engine/internal/config"
	"github.com/ignite/attribution-engine/internal/service/report"
)

// ReportService is the slice of the report service the handlers need.
type ReportService interface {
	AttributionReport(ctx context.Context, orgID string, req report.ReportRequest) (*report.AttributionReport, error)
	CompareModels(ctx context.Context, orgID string, req report.ReportRequest) (*report.ComparisonReport, error)
	ConnectorReport(ctx context.Context, orgID string, req report.ReportRequest) (*report.ConnectorReport, error)
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	reports ReportService
	cfg     *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reports ReportService, cfg *config.Config) *Handlers {
	return &Handlers{reports: reports, cfg: cfg}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
