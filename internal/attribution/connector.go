package attribution

import (
	"sort"

	"github.com/ignite/attribution-engine/internal/domain"
)

// clickIDPlatform maps a click-identifier type to the platform that issued
// it and the medium that identifier class implies.
type clickIDPlatform struct {
	source string
	medium string
}

var clickIDPlatforms = map[string]clickIDPlatform{
	"gclid":     {"google", "cpc"},
	"gbraid":    {"google", "cpc"},
	"wbraid":    {"google", "cpc"},
	"fbclid":    {"facebook", "paid"},
	"ttclid":    {"tiktok", "paid"},
	"msclkid":   {"microsoft", "paid"},
	"li_fat_id": {"linkedin", "paid"},
	"twclid":    {"twitter", "paid"},
	"sccid":     {"snapchat", "paid"},
	"pnclid":    {"pinterest", "paid"},
}

// unattributedSource is the bucket for conversions no cascade step matched.
const unattributedSource = "unattributed"

type channel struct {
	source, medium, campaign string
}

// ConnectorSummary totals one connector attribution run.
type ConnectorSummary struct {
	TotalConversions  int     `json:"total_conversions"`
	TotalRevenue      float64 `json:"total_revenue"`
	AttributedCount   int     `json:"attributed_count"`
	UnattributedCount int     `json:"unattributed_count"`
}

// AttributeConnectorConversions assigns a marketing channel to each
// connector conversion via the priority cascade: click_id, then the
// conversion's own utm parameters, then hashed-email matching against
// tracked events. First match wins; an unrecognized signal falls through
// to the next step instead of failing the batch. Unmatched conversions are
// grouped under a dedicated bucket and still counted in totals.
//
// trackedEvents is only consulted for the email-hash step; passing nil
// disables that step.
func AttributeConnectorConversions(conversions []domain.ConnectorConversion, trackedEvents []domain.TouchpointEvent) ([]domain.ConnectorAttributionResult, ConnectorSummary) {
	hashIndex := buildEmailHashIndex(trackedEvents)

	type groupKey struct {
		ch        channel
		method    domain.AttributionMethod
		connector string
	}
	groups := make(map[groupKey]*domain.ConnectorAttributionResult)
	var order []groupKey

	var summary ConnectorSummary
	for _, c := range conversions {
		ch, method := attributeOne(c, hashIndex)

		summary.TotalConversions++
		summary.TotalRevenue += float64(c.NetRevenueCents) / 100
		if method == domain.MethodUnattributed {
			summary.UnattributedCount++
		} else {
			summary.AttributedCount++
		}

		key := groupKey{ch: ch, method: method, connector: c.SourcePlatform}
		g, ok := groups[key]
		if !ok {
			g = &domain.ConnectorAttributionResult{
				Source:          ch.source,
				Medium:          ch.medium,
				Campaign:        ch.campaign,
				Method:          method,
				ConnectorSource: c.SourcePlatform,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.AttributedConversions++
		g.AttributedRevenue += float64(c.NetRevenueCents) / 100
	}

	results := make([]domain.ConnectorAttributionResult, 0, len(order))
	for _, key := range order {
		results = append(results, *groups[key])
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].AttributedRevenue != results[j].AttributedRevenue {
			return results[i].AttributedRevenue > results[j].AttributedRevenue
		}
		if results[i].AttributedConversions != results[j].AttributedConversions {
			return results[i].AttributedConversions > results[j].AttributedConversions
		}
		if results[i].Source != results[j].Source {
			return results[i].Source < results[j].Source
		}
		return results[i].ConnectorSource < results[j].ConnectorSource
	})
	return results, summary
}

// attributeOne walks the cascade for a single conversion. Each step either
// produces a channel or explicitly declines, so the priority order is
// visible as a state machine rather than implicit falsy-value chaining.
func attributeOne(c domain.ConnectorConversion, hashIndex map[string]domain.TouchpointEvent) (channel, domain.AttributionMethod) {
	if ch, ok := matchClickID(c); ok {
		return ch, domain.MethodClickID
	}
	if ch, ok := matchUTMParams(c); ok {
		return ch, domain.MethodUTMParams
	}
	if ch, ok := matchEmailHash(c, hashIndex); ok {
		return ch, domain.MethodEmailHash
	}
	return channel{source: unattributedSource}, domain.MethodUnattributed
}

func matchClickID(c domain.ConnectorConversion) (channel, bool) {
	if c.AttributedClickID == "" || c.AttributedClickIDType == "" {
		return channel{}, false
	}
	platform, ok := clickIDPlatforms[c.AttributedClickIDType]
	if !ok {
		// Unknown identifier type: decline so the next step can try.
		return channel{}, false
	}
	campaign := c.UTMCampaign
	if campaign == "" {
		campaign = "unknown"
	}
	return channel{source: platform.source, medium: platform.medium, campaign: campaign}, true
}

func matchUTMParams(c domain.ConnectorConversion) (channel, bool) {
	if c.UTMSource == "" {
		return channel{}, false
	}
	return channel{source: c.UTMSource, medium: c.UTMMedium, campaign: c.UTMCampaign}, true
}

func matchEmailHash(c domain.ConnectorConversion, hashIndex map[string]domain.TouchpointEvent) (channel, bool) {
	if c.CustomerEmailHash == "" {
		return channel{}, false
	}
	e, ok := hashIndex[c.CustomerEmailHash]
	if !ok {
		return channel{}, false
	}
	return channel{source: e.Source, medium: e.Medium, campaign: e.Campaign}, true
}

// buildEmailHashIndex keeps the most recently seen tracked event per email
// hash (ingestion order breaks timestamp ties).
func buildEmailHashIndex(events []domain.TouchpointEvent) map[string]domain.TouchpointEvent {
	index := make(map[string]domain.TouchpointEvent)
	for _, e := range events {
		if e.EmailHash == "" || !e.HasChannel() {
			continue
		}
		prev, ok := index[e.EmailHash]
		if !ok || e.OccurredAt.After(prev.OccurredAt) ||
			(e.OccurredAt.Equal(prev.OccurredAt) && e.IngestSeq > prev.IngestSeq) {
			index[e.EmailHash] = e
		}
	}
	return index
}
