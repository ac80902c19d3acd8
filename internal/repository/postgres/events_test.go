package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/attribution-engine/internal/domain"
	"github.com/ignite/attribution-engine/internal/service/report"
)

func setupTestDB(t *testing.T) (*EventRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventRepo(db), mock
}

func TestEventRepo_ListEvents(t *testing.T) {
	repo, mock := setupTestDB(t)

	occurred := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM tracked_events").
		WithArgs("org-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organization_id", "actor_id", "event_type", "occurred_at",
			"utm_source", "utm_medium", "utm_campaign",
			"click_id", "click_id_type", "email_hash", "value", "ingest_seq",
		}).
			AddRow("ev-1", "org-1", "anon-a", "touchpoint", occurred,
				"google", "cpc", "spring_launch", "", "", "", 0.0, int64(1)).
			AddRow("ev-2", "org-1", "anon-a", "conversion", occurred.Add(time.Hour),
				"email", "email", "spring_launch", "", "", "hash-1", 99.5, int64(2)))

	events, err := repo.ListEvents(context.Background(), "org-1", occurred.Add(-time.Hour), occurred.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "anon-a", events[0].ActorID)
	assert.Equal(t, domain.EventTouchpoint, events[0].EventType)
	assert.Equal(t, "google", events[0].Source)
	assert.True(t, events[1].IsConversion())
	assert.Equal(t, 99.5, events[1].Value)
	assert.Equal(t, "hash-1", events[1].EmailHash)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListEvents_Empty(t *testing.T) {
	repo, mock := setupTestDB(t)

	mock.ExpectQuery("SELECT (.+) FROM tracked_events").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organization_id", "actor_id", "event_type", "occurred_at",
			"utm_source", "utm_medium", "utm_campaign",
			"click_id", "click_id_type", "email_hash", "value", "ingest_seq",
		}))

	events, err := repo.ListEvents(context.Background(), "org-1", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSettingsRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM organization_settings").
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"organization_id", "default_attribution_model",
			"attribution_window_days", "time_decay_half_life_days", "conversion_source",
		}).AddRow("org-1", "time_decay", 14, 3.5, "connectors"))

	s, err := repo.Get(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, "time_decay", s.DefaultModel)
	assert.Equal(t, 14, s.AttributionWindowDays)
	assert.Equal(t, 3.5, s.TimeDecayHalfLifeDays)
	assert.Equal(t, domain.SourceConnectors, s.ConversionSource)
}

func TestSettingsRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM organization_settings").
		WithArgs("org-missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"organization_id", "default_attribution_model",
			"attribution_window_days", "time_decay_half_life_days", "conversion_source",
		}))

	_, err = repo.Get(context.Background(), "org-missing")
	assert.ErrorIs(t, err, report.ErrSettingsNotFound)
}
