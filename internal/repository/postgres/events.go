package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/attribution-engine/internal/domain"
)

// EventRepo implements report.EventRepository against PostgreSQL.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed event repository.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// ListEvents returns one organization's events in the window, ordered
// ascending by occurred_at with ingest_seq breaking ties so path
// construction stays deterministic.
func (r *EventRepo) ListEvents(ctx context.Context, orgID string, from, to time.Time) ([]domain.TouchpointEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, organization_id, actor_id, event_type, occurred_at,
		       COALESCE(utm_source,''), COALESCE(utm_medium,''), COALESCE(utm_campaign,''),
		       COALESCE(click_id,''), COALESCE(click_id_type,''), COALESCE(email_hash,''),
		       COALESCE(value,0), ingest_seq
		FROM tracked_events
		WHERE organization_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at ASC, ingest_seq ASC
	`, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.TouchpointEvent
	for rows.Next() {
		var e domain.TouchpointEvent
		if err := rows.Scan(
			&e.ID, &e.OrganizationID, &e.ActorID, &e.EventType, &e.OccurredAt,
			&e.Source, &e.Medium, &e.Campaign,
			&e.ClickID, &e.ClickIDType, &e.EmailHash,
			&e.Value, &e.IngestSeq,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
