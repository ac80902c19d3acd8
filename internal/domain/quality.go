package domain

import "time"

// ConversionSource is the organization-level setting for which data source
// conversions should be reported from.
type ConversionSource string

const (
	SourceTag         ConversionSource = "tag"
	SourceAdPlatforms ConversionSource = "ad_platforms"
	SourceConnectors  ConversionSource = "connectors"
)

// DataQuality is the ordered confidence tier of an attribution report,
// highest to lowest: verified > connector_only > tracked > estimated >
// platform_reported.
type DataQuality string

const (
	QualityVerified         DataQuality = "verified"
	QualityConnectorOnly    DataQuality = "connector_only"
	QualityTracked          DataQuality = "tracked"
	QualityEstimated        DataQuality = "estimated"
	QualityPlatformReported DataQuality = "platform_reported"
)

// Warning codes attached by the data-quality selector.
const (
	WarnNoEvents                 = "no_events"
	WarnNoTrackedConversions     = "no_tracked_conversions"
	WarnNoConnectorConversions   = "no_connector_conversions"
	WarnUsingPlatformConversions = "using_platform_conversions"
)

// DataQualityInfo labels how trustworthy a report is given the data that
// actually existed for the request window.
type DataQualityInfo struct {
	Quality     DataQuality `json:"quality"`
	Warnings    []string    `json:"warnings"`
	Events      int         `json:"events_considered"`
	Conversions int         `json:"conversions_considered"`

	// FallbackSource names the source substituted for the configured one,
	// empty when the configured source answered.
	FallbackSource ConversionSource `json:"fallback_source,omitempty"`
}

// OrgSettings holds an organization's attribution configuration.
type OrgSettings struct {
	OrganizationID        string           `json:"organization_id" db:"organization_id"`
	DefaultModel          string           `json:"default_attribution_model" db:"default_attribution_model"`
	AttributionWindowDays int              `json:"attribution_window_days" db:"attribution_window_days"`
	TimeDecayHalfLifeDays float64          `json:"time_decay_half_life_days" db:"time_decay_half_life_days"`
	ConversionSource      ConversionSource `json:"conversion_source" db:"conversion_source"`
}

// PlatformMetric is one day of self-reported performance from an ad
// platform's reporting API. Used as the attribution floor when no
// first-party signal exists.
type PlatformMetric struct {
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Platform       string    `json:"platform" db:"platform"`
	Date           time.Time `json:"date" db:"date"`
	Campaign       string    `json:"campaign" db:"campaign"`
	Impressions    int64     `json:"impressions" db:"impressions"`
	Clicks         int64     `json:"clicks" db:"clicks"`
	Conversions    float64   `json:"conversions" db:"conversions"`
	Revenue        float64   `json:"revenue" db:"revenue"`
	SpendCents     int64     `json:"spend_cents" db:"spend_cents"`
}
