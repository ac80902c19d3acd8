package attribution

import (
	"sort"

	"github.com/ignite/attribution-engine/internal/domain"
)

// PathAttribution pairs one conversion path with its credit split.
type PathAttribution struct {
	Path   domain.ConversionPath
	Result domain.AttributionResult
}

type channelKey struct {
	source, medium, campaign string
}

type channelAccumulator struct {
	row         domain.ChannelAttribution
	positionSum float64
}

// AggregateChannels reduces per-path attribution results into per-channel
// totals. For each credited touchpoint the channel earns the credit
// fraction as attributed conversions and credit × conversion value as
// attributed revenue; a channel's conversions_in_path counts each path it
// appears in once.
//
// Output ordering is deterministic: attributed revenue descending, then
// attributed conversions descending, then source ascending.
func AggregateChannels(pairs []PathAttribution) []domain.ChannelAttribution {
	acc := make(map[channelKey]*channelAccumulator)
	var order []channelKey

	for _, pa := range pairs {
		seenInPath := make(map[channelKey]bool)
		for i, credit := range pa.Result.Credits {
			e := pa.Path.Events[i]
			key := channelKey{e.Source, e.Medium, e.Campaign}

			a, ok := acc[key]
			if !ok {
				a = &channelAccumulator{row: domain.ChannelAttribution{
					Source:   key.source,
					Medium:   key.medium,
					Campaign: key.campaign,
				}}
				acc[key] = a
				order = append(order, key)
			}

			a.row.Touchpoints++
			a.row.AttributedConversions += credit
			a.row.AttributedRevenue += credit * pa.Path.ConversionValue
			a.positionSum += float64(i)

			if !seenInPath[key] {
				seenInPath[key] = true
				a.row.ConversionsInPath++
			}
		}
	}

	rows := make([]domain.ChannelAttribution, 0, len(order))
	for _, key := range order {
		a := acc[key]
		if a.row.Touchpoints > 0 {
			a.row.AvgPositionInPath = a.positionSum / float64(a.row.Touchpoints)
		}
		rows = append(rows, a.row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AttributedRevenue != rows[j].AttributedRevenue {
			return rows[i].AttributedRevenue > rows[j].AttributedRevenue
		}
		if rows[i].AttributedConversions != rows[j].AttributedConversions {
			return rows[i].AttributedConversions > rows[j].AttributedConversions
		}
		return rows[i].Source < rows[j].Source
	})
	return rows
}
