package api

import (
	"errors"
	"net/http"

	"github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/pkg/logger"
	"github.com/ignite/attribution-engine/internal/service/report"
)

// Internal errors (database details, file paths, driver messages) are never
// leaked to API consumers. 5xx responses carry a generic message while the
// full error is logged server-side.

// respondSafeError logs the internal error and sends a sanitized JSON error
// response to the client.
func respondSafeError(w http.ResponseWriter, code int, internalErr error, publicMsg string) {
	if internalErr != nil {
		logger.Error("request failed",
			"status", code,
			"public", publicMsg,
			"error", internalErr.Error(),
		)
	}
	respondJSON(w, code, map[string]string{"error": publicMsg})
}

// respondReportError maps report service errors onto HTTP status codes.
// Validation failures are safe to expose; anything else is sanitized.
func respondReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrDateRangeTooWide),
		errors.Is(err, report.ErrInvalidWindowDays),
		errors.Is(err, attribution.ErrUnknownModel),
		errors.Is(err, attribution.ErrInvalidHalfLife):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		respondSafeError(w, http.StatusInternalServerError, err, "failed to compute attribution report")
	}
}
