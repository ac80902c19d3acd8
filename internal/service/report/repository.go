package report

import (
	"context"
	"time"

	"github.com/ignite/attribution-engine/internal/domain"
)

// EventRepository fetches tracked touchpoint and conversion events for one
// organization and date range, ordered ascending by occurred_at with
// ingestion order breaking ties. Implementations must be safe for
// concurrent use.
type EventRepository interface {
	ListEvents(ctx context.Context, orgID string, from, to time.Time) ([]domain.TouchpointEvent, error)
}

// IdentityRepository fetches identity links for one organization.
type IdentityRepository interface {
	ListLinks(ctx context.Context, orgID string) ([]domain.IdentityLink, error)
}

// ConnectorRepository fetches connector-reported conversions for one
// organization and date range.
type ConnectorRepository interface {
	ListConversions(ctx context.Context, orgID string, from, to time.Time) ([]domain.ConnectorConversion, error)
}

// PlatformMetricsRepository fetches ad-platform self-reported daily metrics.
type PlatformMetricsRepository interface {
	ListMetrics(ctx context.Context, orgID string, from, to time.Time) ([]domain.PlatformMetric, error)
}

// SettingsRepository fetches an organization's attribution settings.
// Returns ErrSettingsNotFound when the organization has no settings row;
// the service substitutes configured defaults.
type SettingsRepository interface {
	Get(ctx context.Context, orgID string) (*domain.OrgSettings, error)
}

// Cache is the read-through report cache. Implementations must treat every
// failure as a miss; caching is an optimization, never a dependency.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}
