package attribution

import "github.com/ignite/attribution-engine/internal/domain"

// QualityInput describes what data actually exists for a request window,
// plus which conversion source the organization configured.
type QualityInput struct {
	ConfiguredSource domain.ConversionSource
	OverrideSource   domain.ConversionSource

	Events               int
	TrackedConversions   int
	ConnectorConversions int
}

// SelectSource decides which data source a report should answer from and
// labels the result with a confidence tier and warning codes. It never
// fails: when no usable first-party signal exists it falls back to
// ad-platform self-reported numbers and says so, letting callers render a
// trust indicator instead of an error.
func SelectSource(in QualityInput) domain.DataQualityInfo {
	info := domain.DataQualityInfo{
		Warnings:    []string{},
		Events:      in.Events,
		Conversions: in.TrackedConversions + in.ConnectorConversions,
	}

	source := in.ConfiguredSource
	if in.OverrideSource != "" {
		source = in.OverrideSource
	}
	if source == "" {
		source = domain.SourceTag
	}

	// Explicitly configured platform reporting is honored verbatim.
	if source == domain.SourceAdPlatforms {
		info.Quality = domain.QualityPlatformReported
		info.Warnings = append(info.Warnings, domain.WarnUsingPlatformConversions)
		return info
	}

	hasEvents := in.Events > 0
	hasTracked := in.TrackedConversions > 0
	hasConnector := in.ConnectorConversions > 0

	switch {
	case hasConnector && hasTracked:
		info.Quality = domain.QualityVerified

	case hasConnector:
		info.Quality = domain.QualityConnectorOnly
		info.Warnings = append(info.Warnings, domain.WarnNoTrackedConversions)

	case hasTracked:
		info.Quality = domain.QualityTracked
		if source == domain.SourceConnectors {
			info.Warnings = append(info.Warnings, domain.WarnNoConnectorConversions)
			info.FallbackSource = domain.SourceTag
		}

	case hasEvents:
		// Tag fires but never records a conversion event: keep the
		// tracked channel mix, estimate volume from platform counts.
		info.Quality = domain.QualityEstimated
		info.Warnings = append(info.Warnings,
			domain.WarnNoTrackedConversions,
			domain.WarnUsingPlatformConversions,
		)
		info.FallbackSource = domain.SourceAdPlatforms

	default:
		info.Quality = domain.QualityPlatformReported
		info.Warnings = append(info.Warnings,
			domain.WarnNoEvents,
			domain.WarnNoConnectorConversions,
			domain.WarnUsingPlatformConversions,
		)
		info.FallbackSource = domain.SourceAdPlatforms
	}
	return info
}
