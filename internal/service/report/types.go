package report

import (
	"time"

	"github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/domain"
)

// ReportRequest describes one attribution report. Zero-value fields fall
// back to the organization's settings, then to configured defaults.
type ReportRequest struct {
	Model        string                  `json:"model,omitempty"`
	DateFrom     time.Time               `json:"date_from"`
	DateTo       time.Time               `json:"date_to"`
	WindowDays   int                     `json:"window_days,omitempty"`
	HalfLifeDays float64                 `json:"half_life_days,omitempty"`
	Source       domain.ConversionSource `json:"source,omitempty"`
	TopN         int                     `json:"top_n,omitempty"`
}

// ResolvedConfig echoes the configuration a report was actually computed
// with, after settings and defaults were applied.
type ResolvedConfig struct {
	Model        string                  `json:"model"`
	WindowDays   int                     `json:"window_days"`
	HalfLifeDays float64                 `json:"half_life_days"`
	Source       domain.ConversionSource `json:"conversion_source"`
}

// Summary holds the headline numbers shared by all report shapes.
type Summary struct {
	TotalConversions  int     `json:"total_conversions"`
	TotalRevenue      float64 `json:"total_revenue"`
	AvgPathLength     float64 `json:"avg_path_length"`
	AvgDaysToConvert  float64 `json:"avg_days_to_convert"`
	IdentifiedUsers   int     `json:"identified_users"`
	AnonymousSessions int     `json:"anonymous_sessions"`
}

// AttributionReport is the single-model report response. ReportID identifies
// the computation; a cache hit returns the original computation's id.
type AttributionReport struct {
	ReportID string                      `json:"report_id"`
	Model    string                      `json:"model"`
	Config   ResolvedConfig              `json:"config"`
	Quality  domain.DataQualityInfo      `json:"data_quality"`
	Channels []domain.ChannelAttribution `json:"channels"`
	Summary  Summary                     `json:"summary"`
}

// ModelChannels is one model's top channels inside a comparison report.
type ModelChannels struct {
	Model    string                      `json:"model"`
	Channels []domain.ChannelAttribution `json:"channels"`
}

// ComparisonReport runs every model over the same path set.
type ComparisonReport struct {
	ReportID string                 `json:"report_id"`
	Models   []ModelChannels        `json:"models"`
	Quality  domain.DataQualityInfo `json:"data_quality"`
	Summary  Summary                `json:"summary"`
}

// ConnectorReport is the connector-conversion attribution response.
type ConnectorReport struct {
	Results []domain.ConnectorAttributionResult `json:"results"`
	Summary attribution.ConnectorSummary        `json:"summary"`
}
