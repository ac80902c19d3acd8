package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/domain"
)

// ========== Fakes ==========

type fakeEvents struct {
	events []domain.TouchpointEvent
	calls  int
}

func (f *fakeEvents) ListEvents(ctx context.Context, orgID string, from, to time.Time) ([]domain.TouchpointEvent, error) {
	f.calls++
	return f.events, nil
}

type fakeIdentities struct{ links []domain.IdentityLink }

func (f *fakeIdentities) ListLinks(ctx context.Context, orgID string) ([]domain.IdentityLink, error) {
	return f.links, nil
}

type fakeConnectors struct{ conversions []domain.ConnectorConversion }

func (f *fakeConnectors) ListConversions(ctx context.Context, orgID string, from, to time.Time) ([]domain.ConnectorConversion, error) {
	return f.conversions, nil
}

type fakePlatforms struct{ metrics []domain.PlatformMetric }

func (f *fakePlatforms) ListMetrics(ctx context.Context, orgID string, from, to time.Time) ([]domain.PlatformMetric, error) {
	return f.metrics, nil
}

type fakeSettings struct{ settings *domain.OrgSettings }

func (f *fakeSettings) Get(ctx context.Context, orgID string) (*domain.OrgSettings, error) {
	if f.settings == nil {
		return nil, ErrSettingsNotFound
	}
	return f.settings, nil
}

type fakeCache struct {
	store map[string][]byte
	hits  int
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, ok := f.store[key]
	if ok {
		f.hits++
	}
	return data, ok
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	f.store[key] = value
}

// ========== Fixtures ==========

var (
	svcBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svcFrom = svcBase.Add(-14 * 24 * time.Hour)
	svcTo   = svcBase.Add(24 * time.Hour)
)

func defaultDefaults() Defaults {
	return Defaults{
		Model:            "last_touch",
		WindowDays:       30,
		HalfLifeDays:     7,
		TopN:             10,
		MaxDateRangeDays: 365,
		HotRetentionDays: 90,
	}
}

func trackedEvents() []domain.TouchpointEvent {
	return []domain.TouchpointEvent{
		{ActorID: "anon-a", EventType: domain.EventTouchpoint, OccurredAt: svcBase.Add(-72 * time.Hour), Source: "google", Medium: "cpc", Campaign: "spring_launch", IngestSeq: 1},
		{ActorID: "anon-a", EventType: domain.EventTouchpoint, OccurredAt: svcBase.Add(-48 * time.Hour), Source: "facebook", Medium: "paid", Campaign: "spring_launch", IngestSeq: 2},
		{ActorID: "anon-a", EventType: domain.EventConversion, OccurredAt: svcBase, Source: "email", Medium: "email", Campaign: "spring_launch", Value: 150, IngestSeq: 3},
	}
}

func newTestService(events []domain.TouchpointEvent, opts ...func(*Deps)) *Service {
	deps := Deps{
		Events:     &fakeEvents{events: events},
		Identities: &fakeIdentities{},
		Connectors: &fakeConnectors{},
		Platforms:  &fakePlatforms{},
		Settings:   &fakeSettings{},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	svc := NewService(deps, defaultDefaults(), time.Minute)
	svc.now = func() time.Time { return svcBase }
	return svc
}

// ========== Tests ==========

func TestAttributionReport_Tracked(t *testing.T) {
	svc := newTestService(trackedEvents())

	rep, err := svc.AttributionReport(context.Background(), "org-1", ReportRequest{
		Model: "linear", DateFrom: svcFrom, DateTo: svcTo,
	})
	require.NoError(t, err)

	assert.Equal(t, "linear", rep.Model)
	assert.Equal(t, 30, rep.Config.WindowDays)
	assert.Equal(t, domain.QualityTracked, rep.Quality.Quality)

	require.Len(t, rep.Channels, 3)
	var total float64
	for _, ch := range rep.Channels {
		total += ch.AttributedConversions
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	assert.Equal(t, 1, rep.Summary.TotalConversions)
	assert.InDelta(t, 150.0, rep.Summary.TotalRevenue, 1e-9)
	assert.InDelta(t, 3.0, rep.Summary.AvgPathLength, 1e-9)
	assert.InDelta(t, 3.0, rep.Summary.AvgDaysToConvert, 1e-9)
}

func TestAttributionReport_SettingsResolveConfig(t *testing.T) {
	svc := newTestService(trackedEvents(), func(d *Deps) {
		d.Settings = &fakeSettings{settings: &domain.OrgSettings{
			OrganizationID:        "org-1",
			DefaultModel:          "position_based",
			AttributionWindowDays: 14,
			TimeDecayHalfLifeDays: 3,
		}}
	})

	rep, err := svc.AttributionReport(context.Background(), "org-1", ReportRequest{
		DateFrom: svcFrom, DateTo: svcTo,
	})
	require.NoError(t, err)

	assert.Equal(t, "position_based", rep.Model)
	assert.Equal(t, 14, rep.Config.WindowDays)
	assert.Equal(t, 3.0, rep.Config.HalfLifeDays)
}

func TestAttributionReport_InvalidInput(t *testing.T) {
	svc := newTestService(trackedEvents())
	ctx := context.Background()

	_, err := svc.AttributionReport(ctx, "org-1", ReportRequest{DateFrom: svcTo, DateTo: svcFrom})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.AttributionReport(ctx, "org-1", ReportRequest{
		DateFrom: svcFrom, DateTo: svcTo, Model: "shapley",
	})
	assert.ErrorIs(t, err, attribution.ErrUnknownModel)

	_, err = svc.AttributionReport(ctx, "org-1", ReportRequest{
		DateFrom: svcFrom.AddDate(-2, 0, 0), DateTo: svcTo,
	})
	assert.ErrorIs(t, err, ErrDateRangeTooWide)
}

func TestAttributionReport_PlatformFallback(t *testing.T) {
	svc := newTestService(nil, func(d *Deps) {
		d.Platforms = &fakePlatforms{metrics: []domain.PlatformMetric{
			{Platform: "google", Campaign: "brand", Conversions: 12, Revenue: 480},
			{Platform: "facebook", Campaign: "retargeting", Conversions: 5, Revenue: 200},
		}}
	})

	rep, err := svc.AttributionReport(context.Background(), "org-1", ReportRequest{
		DateFrom: svcFrom, DateTo: svcTo,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QualityPlatformReported, rep.Quality.Quality)
	assert.Contains(t, rep.Quality.Warnings, domain.WarnUsingPlatformConversions)

	require.Len(t, rep.Channels, 2)
	assert.Equal(t, "google", rep.Channels[0].Source)
	assert.Equal(t, 480.0, rep.Channels[0].AttributedRevenue)
	assert.Equal(t, 17, rep.Summary.TotalConversions)
	assert.Equal(t, 680.0, rep.Summary.TotalRevenue)
}

func TestAttributionReport_ConnectorOnly(t *testing.T) {
	// Touchpoints exist but no tracked conversion; a connector reports one.
	events := trackedEvents()[:2]
	svc := newTestService(events, func(d *Deps) {
		d.Connectors = &fakeConnectors{conversions: []domain.ConnectorConversion{{
			SourcePlatform: "stripe", UTMSource: "google", UTMMedium: "cpc",
			UTMCampaign: "spring_launch", NetRevenueCents: 9900, OccurredAt: svcBase,
		}}}
	})

	rep, err := svc.AttributionReport(context.Background(), "org-1", ReportRequest{
		DateFrom: svcFrom, DateTo: svcTo,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QualityConnectorOnly, rep.Quality.Quality)
	require.Len(t, rep.Channels, 1)
	assert.Equal(t, "google", rep.Channels[0].Source)
	assert.InDelta(t, 99.0, rep.Channels[0].AttributedRevenue, 1e-9)
	assert.Equal(t, 1, rep.Summary.TotalConversions)
}

func TestAttributionReport_CacheHit(t *testing.T) {
	cache := &fakeCache{store: map[string][]byte{}}
	events := &fakeEvents{events: trackedEvents()}
	svc := newTestService(nil, func(d *Deps) {
		d.Events = events
		d.Cache = cache
	})

	req := ReportRequest{Model: "linear", DateFrom: svcFrom, DateTo: svcTo}
	ctx := context.Background()

	first, err := svc.AttributionReport(ctx, "org-1", req)
	require.NoError(t, err)
	fetchesAfterFirst := events.calls

	second, err := svc.AttributionReport(ctx, "org-1", req)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, fetchesAfterFirst, events.calls, "cached call must not refetch")
	assert.Equal(t, first, second)
}

func TestCompareModels(t *testing.T) {
	svc := newTestService(trackedEvents())

	rep, err := svc.CompareModels(context.Background(), "org-1", ReportRequest{
		DateFrom: svcFrom, DateTo: svcTo, TopN: 2,
	})
	require.NoError(t, err)

	require.Len(t, rep.Models, len(attribution.AllModels))
	for i, model := range attribution.AllModels {
		assert.Equal(t, model.String(), rep.Models[i].Model)
		assert.LessOrEqual(t, len(rep.Models[i].Channels), 2)
	}
	assert.Equal(t, 1, rep.Summary.TotalConversions)

	// Identical input yields byte-identical output ordering.
	again, err := svc.CompareModels(context.Background(), "org-1", ReportRequest{
		DateFrom: svcFrom, DateTo: svcTo, TopN: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, rep.Models, again.Models)
	assert.Equal(t, rep.Summary, again.Summary)
}

func TestConnectorReport(t *testing.T) {
	svc := newTestService(trackedEvents(), func(d *Deps) {
		d.Connectors = &fakeConnectors{conversions: []domain.ConnectorConversion{
			{SourcePlatform: "stripe", AttributedClickID: "x", AttributedClickIDType: "fbclid", NetRevenueCents: 5000, OccurredAt: svcBase},
			{SourcePlatform: "shopify", NetRevenueCents: 2000, OccurredAt: svcBase},
		}}
	})

	rep, err := svc.ConnectorReport(context.Background(), "org-1", ReportRequest{
		DateFrom: svcFrom, DateTo: svcTo,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Summary.TotalConversions)
	assert.Equal(t, 1, rep.Summary.AttributedCount)
	assert.Equal(t, 1, rep.Summary.UnattributedCount)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, "facebook", rep.Results[0].Source)
}

func TestEventSource_WarehouseRouting(t *testing.T) {
	hot := &fakeEvents{}
	cold := &fakeEvents{}
	svc := newTestService(nil, func(d *Deps) {
		d.Events = hot
		d.Warehouse = cold
	})

	// Recent range stays on the hot store.
	src := svc.eventSource(ReportRequest{DateFrom: svcBase.AddDate(0, 0, -30), DateTo: svcBase})
	assert.Same(t, hot, src)

	// Range older than retention routes to the warehouse.
	src = svc.eventSource(ReportRequest{DateFrom: svcBase.AddDate(0, 0, -120), DateTo: svcBase})
	assert.Same(t, cold, src)
}
