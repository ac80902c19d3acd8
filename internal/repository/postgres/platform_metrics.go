package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/attribution-engine/internal/domain"
)

// PlatformMetricsRepo implements report.PlatformMetricsRepository against
// PostgreSQL. Rows are written by the platform sync jobs; this repository
// only reads.
type PlatformMetricsRepo struct{ db *sql.DB }

// NewPlatformMetricsRepo creates a Postgres-backed platform-metrics repository.
func NewPlatformMetricsRepo(db *sql.DB) *PlatformMetricsRepo { return &PlatformMetricsRepo{db: db} }

func (r *PlatformMetricsRepo) ListMetrics(ctx context.Context, orgID string, from, to time.Time) ([]domain.PlatformMetric, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT organization_id, platform, date, COALESCE(campaign,''),
		       impressions, clicks, conversions, revenue, spend_cents
		FROM platform_daily_metrics
		WHERE organization_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC, platform ASC, campaign ASC
	`, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list platform metrics: %w", err)
	}
	defer rows.Close()

	var out []domain.PlatformMetric
	for rows.Next() {
		var m domain.PlatformMetric
		if err := rows.Scan(
			&m.OrganizationID, &m.Platform, &m.Date, &m.Campaign,
			&m.Impressions, &m.Clicks, &m.Conversions, &m.Revenue, &m.SpendCents,
		); err != nil {
			return nil, fmt.Errorf("scan platform metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
