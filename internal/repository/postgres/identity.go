package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/attribution-engine/internal/domain"
)

// IdentityRepo implements report.IdentityRepository against PostgreSQL.
type IdentityRepo struct{ db *sql.DB }

// NewIdentityRepo creates a Postgres-backed identity-link repository.
func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{db: db} }

func (r *IdentityRepo) ListLinks(ctx context.Context, orgID string) ([]domain.IdentityLink, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT organization_id, user_id, anonymous_id, linked_at
		FROM identity_links
		WHERE organization_id = $1
		ORDER BY linked_at ASC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list identity links: %w", err)
	}
	defer rows.Close()

	var out []domain.IdentityLink
	for rows.Next() {
		var l domain.IdentityLink
		if err := rows.Scan(&l.OrganizationID, &l.UserID, &l.AnonymousID, &l.LinkedAt); err != nil {
			return nil, fmt.Errorf("scan identity link: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
