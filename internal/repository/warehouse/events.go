// Package warehouse implements the report repositories against Snowflake.
//
// The hot Postgres store only retains recent events; requests whose date
// range reaches further back are served from the warehouse, where the
// ingestion pipeline lands the full event history.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver

	"github.com/ignite/attribution-engine/internal/domain"
)

// EventRepo implements report.EventRepository against Snowflake.
type EventRepo struct{ db *sql.DB }

// Open connects to Snowflake with conservative pool settings; warehouse
// queries are rare and heavy.
// DSN format: user:password@account/database/schema?warehouse=xxx
func Open(dsn string) (*EventRepo, error) {
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snowflake connection: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &EventRepo{db: db}, nil
}

// NewEventRepo wraps an existing connection (used by tests).
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Close closes the underlying connection pool.
func (r *EventRepo) Close() error { return r.db.Close() }

// Ping tests the warehouse connection.
func (r *EventRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// ListEvents mirrors the Postgres repository's contract, including the
// occurred_at + ingest_seq ordering the path builder depends on.
func (r *EventRepo) ListEvents(ctx context.Context, orgID string, from, to time.Time) ([]domain.TouchpointEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ID, ORGANIZATION_ID, ACTOR_ID, EVENT_TYPE, OCCURRED_AT,
		       COALESCE(UTM_SOURCE,''), COALESCE(UTM_MEDIUM,''), COALESCE(UTM_CAMPAIGN,''),
		       COALESCE(CLICK_ID,''), COALESCE(CLICK_ID_TYPE,''), COALESCE(EMAIL_HASH,''),
		       COALESCE(VALUE,0), INGEST_SEQ
		FROM TRACKED_EVENTS
		WHERE ORGANIZATION_ID = ? AND OCCURRED_AT >= ? AND OCCURRED_AT < ?
		ORDER BY OCCURRED_AT ASC, INGEST_SEQ ASC
	`, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list warehouse events: %w", err)
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
			return nil, fmt.Errorf("scan warehouse event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
