package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/attribution-engine/internal/domain"
)

// ConnectorRepo implements report.ConnectorRepository against PostgreSQL.
type ConnectorRepo struct{ db *sql.DB }

// NewConnectorRepo creates a Postgres-backed connector-conversion repository.
func NewConnectorRepo(db *sql.DB) *ConnectorRepo { return &ConnectorRepo{db: db} }

func (r *ConnectorRepo) ListConversions(ctx context.Context, orgID string, from, to time.Time) ([]domain.ConnectorConversion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, organization_id, source_platform,
		       COALESCE(attributed_click_id,''), COALESCE(attributed_click_id_type,''),
		       COALESCE(customer_email_hash,''),
		       COALESCE(utm_source,''), COALESCE(utm_medium,''), COALESCE(utm_campaign,''),
		       net_revenue_cents, occurred_at
		FROM connector_conversions
		WHERE organization_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at ASC, id ASC
	`, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list connector conversions: %w", err)
	}
	defer rows.Close()

	var out []domain.ConnectorConversion
	for rows.Next() {
		var c domain.ConnectorConversion
		if err := rows.Scan(
			&c.ID, &c.OrganizationID, &c.SourcePlatform,
			&c.AttributedClickID, &c.AttributedClickIDType,
			&c.CustomerEmailHash,
			&c.UTMSource, &c.UTMMedium, &c.UTMCampaign,
			&c.NetRevenueCents, &c.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan connector conversion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
