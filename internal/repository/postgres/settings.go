package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/attribution-engine/internal/domain"
	"github.com/ignite/attribution-engine/internal/service/report"
)

// SettingsRepo implements report.SettingsRepository against PostgreSQL.
type SettingsRepo struct{ db *sql.DB }

// NewSettingsRepo creates a Postgres-backed organization settings repository.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) Get(ctx context.Context, orgID string) (*domain.OrgSettings, error) {
	s := &domain.OrgSettings{}
	err := r.db.QueryRowContext(ctx, `
		SELECT organization_id, COALESCE(default_attribution_model,''),
		       COALESCE(attribution_window_days,0), COALESCE(time_decay_half_life_days,0),
		       COALESCE(conversion_source,'')
		FROM organization_settings
		WHERE organization_id = $1
	`, orgID).Scan(
		&s.OrganizationID, &s.DefaultModel,
		&s.AttributionWindowDays, &s.TimeDecayHalfLifeDays,
		&s.ConversionSource,
	)
	if err == sql.ErrNoRows {
		return nil, report.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get org settings: %w", err)
	}
	return s, nil
}
