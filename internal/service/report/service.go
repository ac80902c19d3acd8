package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/domain"
)

// Defaults are the engine defaults applied when an organization has no
// settings row and the request carries no override.
type Defaults struct {
	Model            string
	WindowDays       int
	HalfLifeDays     float64
	TopN             int
	MaxDateRangeDays int
	HotRetentionDays int
}

// Deps wires the service to its collaborators. Events is required;
// Warehouse and Cache are optional.
type Deps struct {
	Events     EventRepository
	Warehouse  EventRepository
	Identities IdentityRepository
	Connectors ConnectorRepository
	Platforms  PlatformMetricsRepository
	Settings   SettingsRepository
	Cache      Cache
}

// Service assembles attribution reports. All public methods are safe for
// concurrent use; the engine itself is stateless.
type Service struct {
	deps     Deps
	defaults Defaults
	cacheTTL time.Duration

	now func() time.Time
}

// NewService creates a report service.
func NewService(deps Deps, defaults Defaults, cacheTTL time.Duration) *Service {
	return &Service{
		deps:     deps,
		defaults: defaults,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// AttributionReport computes the single-model attribution report.
func (s *Service) AttributionReport(ctx context.Context, orgID string, req ReportRequest) (*AttributionReport, error) {
	if err := s.validateRange(req); err != nil {
		return nil, err
	}

	cfg, model, err := s.resolveConfig(ctx, orgID, req)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("attr:v1:%s:%s:%d:%s:%.4f:%s:%s",
		orgID, cfg.Model, cfg.WindowDays,
		req.DateFrom.UTC().Format(time.RFC3339), cfg.HalfLifeDays, cfg.Source,
		req.DateTo.UTC().Format(time.RFC3339))
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		var rep AttributionReport
		if err := json.Unmarshal(cached, &rep); err == nil {
			return &rep, nil
		}
	}

	in, err := s.gather(ctx, orgID, req, cfg)
	if err != nil {
		return nil, err
	}

	rep := &AttributionReport{
		ReportID: uuid.NewString(),
		Model:    cfg.Model,
		Config:   cfg,
		Quality:  in.quality,
	}

	switch in.quality.Quality {
	case domain.QualityPlatformReported, domain.QualityEstimated:
		rep.Channels = platformChannels(in.platformMetrics)
		rep.Summary = platformSummary(in)

	case domain.QualityConnectorOnly:
		results, connSummary := attribution.AttributeConnectorConversions(in.conversions, in.events)
		rep.Channels = connectorChannels(results)
		rep.Summary = Summary{
			TotalConversions:  connSummary.TotalConversions,
			TotalRevenue:      connSummary.TotalRevenue,
			IdentifiedUsers:   in.identities.IdentifiedUsers(),
			AnonymousSessions: in.identities.AnonymousSessions(),
		}

	default:
		pairs, err := s.evaluate(in.paths, model, cfg)
		if err != nil {
			return nil, err
		}
		rep.Channels = attribution.AggregateChannels(pairs)
		rep.Summary = pathSummary(in, pairs)
	}

	if data, err := json.Marshal(rep); err == nil {
		s.cacheSet(ctx, cacheKey, data)
	}
	return rep, nil
}

// CompareModels runs every model over the same path set and returns each
// model's top-N channels with one shared summary. Model evaluations run
// concurrently; assembly order is fixed so output is deterministic.
func (s *Service) CompareModels(ctx context.Context, orgID string, req ReportRequest) (*ComparisonReport, error) {
	if err := s.validateRange(req); err != nil {
		return nil, err
	}

	cfg, _, err := s.resolveConfig(ctx, orgID, req)
	if err != nil {
		return nil, err
	}

	in, err := s.gather(ctx, orgID, req, cfg)
	if err != nil {
		return nil, err
	}

	topN := req.TopN
	if topN <= 0 {
		topN = s.defaults.TopN
	}

	results := make([]ModelChannels, len(attribution.AllModels))
	errs := make([]error, len(attribution.AllModels))

	var wg sync.WaitGroup
	for i, model := range attribution.AllModels {
		wg.Add(1)
		go func(i int, model attribution.Model) {
			defer wg.Done()
			pairs, err := s.evaluate(in.paths, model, cfg)
			if err != nil {
				errs[i] = err
				return
			}
			channels := attribution.AggregateChannels(pairs)
			if len(channels) > topN {
				channels = channels[:topN]
			}
			results[i] = ModelChannels{Model: model.String(), Channels: channels}
		}(i, model)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	rep := &ComparisonReport{
		ReportID: uuid.NewString(),
		Models:   results,
		Quality:  in.quality,
	}
	if len(in.paths) > 0 {
		pairs, err := s.evaluate(in.paths, attribution.LastTouch, cfg)
		if err != nil {
			return nil, err
		}
		rep.Summary = pathSummary(in, pairs)
	} else {
		rep.Summary = Summary{
			IdentifiedUsers:   in.identities.IdentifiedUsers(),
			AnonymousSessions: in.identities.AnonymousSessions(),
		}
	}
	return rep, nil
}

// ConnectorReport attributes connector-reported conversions to channels.
func (s *Service) ConnectorReport(ctx context.Context, orgID string, req ReportRequest) (*ConnectorReport, error) {
	if err := s.validateRange(req); err != nil {
		return nil, err
	}

	conversions, err := s.deps.Connectors.ListConversions(ctx, orgID, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("list connector conversions: %w", err)
	}

	// Tracked events are only needed for the email-hash cascade step.
	events, err := s.eventSource(req).ListEvents(ctx, orgID, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	results, summary := attribution.AttributeConnectorConversions(conversions, events)
	return &ConnectorReport{Results: results, Summary: summary}, nil
}

// ========== Internals ==========

// inputs holds everything one request fetched up front.
type inputs struct {
	events          []domain.TouchpointEvent
	conversions     []domain.ConnectorConversion
	platformMetrics []domain.PlatformMetric
	identities      attribution.IdentityMap
	paths           []domain.ConversionPath
	quality         domain.DataQualityInfo
}

func (s *Service) gather(ctx context.Context, orgID string, req ReportRequest, cfg ResolvedConfig) (*inputs, error) {
	events, err := s.eventSource(req).ListEvents(ctx, orgID, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	links, err := s.deps.Identities.ListLinks(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list identity links: %w", err)
	}
	conversions, err := s.deps.Connectors.ListConversions(ctx, orgID, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("list connector conversions: %w", err)
	}

	in := &inputs{
		events:      events,
		conversions: conversions,
		identities:  attribution.ResolveIdentities(links),
	}
	in.paths = attribution.BuildPaths(events, in.identities, cfg.WindowDays)

	in.quality = attribution.SelectSource(attribution.QualityInput{
		ConfiguredSource:     cfg.Source,
		OverrideSource:       req.Source,
		Events:               len(events),
		TrackedConversions:   len(in.paths),
		ConnectorConversions: len(conversions),
	})

	if in.quality.Quality == domain.QualityPlatformReported || in.quality.Quality == domain.QualityEstimated {
		metrics, err := s.deps.Platforms.ListMetrics(ctx, orgID, req.DateFrom, req.DateTo)
		if err != nil {
			return nil, fmt.Errorf("list platform metrics: %w", err)
		}
		in.platformMetrics = metrics
	}
	return in, nil
}

// eventSource routes to the warehouse for ranges older than the hot
// store's retention.
func (s *Service) eventSource(req ReportRequest) EventRepository {
	if s.deps.Warehouse == nil {
		return s.deps.Events
	}
	cutoff := s.now().AddDate(0, 0, -s.defaults.HotRetentionDays)
	if req.DateFrom.Before(cutoff) {
		return s.deps.Warehouse
	}
	return s.deps.Events
}

func (s *Service) validateRange(req ReportRequest) error {
	if !req.DateFrom.Before(req.DateTo) {
		return ErrInvalidDateRange
	}
	if s.defaults.MaxDateRangeDays > 0 {
		maxRange := time.Duration(s.defaults.MaxDateRangeDays) * 24 * time.Hour
		if req.DateTo.Sub(req.DateFrom) > maxRange {
			return ErrDateRangeTooWide
		}
	}
	if req.WindowDays < 0 {
		return ErrInvalidWindowDays
	}
	return nil
}

// resolveConfig layers request overrides onto organization settings onto
// configured defaults, validating the model name eagerly.
func (s *Service) resolveConfig(ctx context.Context, orgID string, req ReportRequest) (ResolvedConfig, attribution.Model, error) {
	settings, err := s.deps.Settings.Get(ctx, orgID)
	if err != nil {
		if !errors.Is(err, ErrSettingsNotFound) {
			return ResolvedConfig{}, 0, fmt.Errorf("get org settings: %w", err)
		}
		settings = &domain.OrgSettings{OrganizationID: orgID}
	}

	cfg := ResolvedConfig{
		Model:        firstNonEmpty(req.Model, settings.DefaultModel, s.defaults.Model),
		WindowDays:   firstPositive(req.WindowDays, settings.AttributionWindowDays, s.defaults.WindowDays),
		HalfLifeDays: firstPositiveF(req.HalfLifeDays, settings.TimeDecayHalfLifeDays, s.defaults.HalfLifeDays),
		Source:       settings.ConversionSource,
	}
	if req.Source != "" {
		cfg.Source = req.Source
	}

	model, err := attribution.ParseModel(cfg.Model)
	if err != nil {
		return ResolvedConfig{}, 0, err
	}
	return cfg, model, nil
}

func (s *Service) evaluate(paths []domain.ConversionPath, model attribution.Model, cfg ResolvedConfig) ([]attribution.PathAttribution, error) {
	pairs := make([]attribution.PathAttribution, 0, len(paths))
	for _, p := range paths {
		res, err := attribution.Calculate(p, attribution.ModelConfig{Model: model, HalfLifeDays: cfg.HalfLifeDays})
		if err != nil {
			return nil, fmt.Errorf("calculate %s: %w", model, err)
		}
		pairs = append(pairs, attribution.PathAttribution{Path: p, Result: res})
	}
	return pairs, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}
	return s.deps.Cache.Get(ctx, key)
}

func (s *Service) cacheSet(ctx context.Context, key string, data []byte) {
	if s.deps.Cache == nil {
		return
	}
	s.deps.Cache.Set(ctx, key, data, s.cacheTTL)
}

// ========== Summaries and fallbacks ==========

func pathSummary(in *inputs, pairs []attribution.PathAttribution) Summary {
	sum := Summary{
		TotalConversions:  len(pairs),
		IdentifiedUsers:   in.identities.IdentifiedUsers(),
		AnonymousSessions: in.identities.AnonymousSessions(),
	}
	if len(pairs) == 0 {
		return sum
	}

	var pathLen, days float64
	for _, pa := range pairs {
		sum.TotalRevenue += pa.Path.ConversionValue
		pathLen += float64(pa.Result.PathLength)
		days += pa.Result.DaysToConvert
	}
	sum.AvgPathLength = pathLen / float64(len(pairs))
	sum.AvgDaysToConvert = days / float64(len(pairs))
	return sum
}

func platformSummary(in *inputs) Summary {
	var conversions, revenue float64
	for _, m := range in.platformMetrics {
		conversions += m.Conversions
		revenue += m.Revenue
	}
	return Summary{
		TotalConversions:  int(math.Round(conversions)),
		TotalRevenue:      revenue,
		IdentifiedUsers:   in.identities.IdentifiedUsers(),
		AnonymousSessions: in.identities.AnonymousSessions(),
	}
}

// platformChannels renders self-reported platform metrics in the channel
// report shape so degraded responses stay drop-in compatible.
func platformChannels(metrics []domain.PlatformMetric) []domain.ChannelAttribution {
	type key struct{ platform, campaign string }
	acc := make(map[key]*domain.ChannelAttribution)
	var order []key

	for _, m := range metrics {
		k := key{m.Platform, m.Campaign}
		row, ok := acc[k]
		if !ok {
			row = &domain.ChannelAttribution{
				Source:   m.Platform,
				Medium:   "paid",
				Campaign: m.Campaign,
			}
			acc[k] = row
			order = append(order, k)
		}
		row.AttributedConversions += m.Conversions
		row.AttributedRevenue += m.Revenue
	}

	rows := make([]domain.ChannelAttribution, 0, len(order))
	for _, k := range order {
		rows = append(rows, *acc[k])
	}
	sortChannels(rows)
	return rows
}

// connectorChannels maps connector attribution groups into the channel
// report shape for connector_only responses.
func connectorChannels(results []domain.ConnectorAttributionResult) []domain.ChannelAttribution {
	rows := make([]domain.ChannelAttribution, 0, len(results))
	for _, r := range results {
		rows = append(rows, domain.ChannelAttribution{
			Source:                r.Source,
			Medium:                r.Medium,
			Campaign:              r.Campaign,
			ConversionsInPath:     r.AttributedConversions,
			AttributedConversions: float64(r.AttributedConversions),
			AttributedRevenue:     r.AttributedRevenue,
		})
	}
	sortChannels(rows)
	return rows
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstPositiveF(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

// sortChannels applies the channel report ordering: revenue descending,
// then attributed conversions descending, then source ascending.
func sortChannels(rows []domain.ChannelAttribution) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AttributedRevenue != rows[j].AttributedRevenue {
			return rows[i].AttributedRevenue > rows[j].AttributedRevenue
		}
		if rows[i].AttributedConversions != rows[j].AttributedConversions {
			return rows[i].AttributedConversions > rows[j].AttributedConversions
		}
		return rows[i].Source < rows[j].Source
	})
}
