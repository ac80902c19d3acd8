package attribution

import (
	"sort"
	"time"

	"github.com/ignite/attribution-engine/internal/domain"
)

const hoursPerDay = 24.0

func windowDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

// BuildPaths constructs one conversion path per conversion event, grouping
// events by resolved actor and walking each conversion backward through the
// attribution window.
//
// An anonymous actor id resolves to its owning user id when an identity
// link exists; this is the only place identity stitching has effect. A path
// never crosses a conversion boundary: collection stops at the previous
// conversion or the window edge, whichever comes first. A conversion with
// no prior touchpoints yields a single-element path.
//
// Output is deterministic: events are stable-sorted ascending by timestamp
// (ingestion order breaks ties) and paths are ordered by conversion time,
// then ingestion order.
func BuildPaths(events []domain.TouchpointEvent, identities IdentityMap, windowDays int) []domain.ConversionPath {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]domain.TouchpointEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	owners := identities.ownerIndex()

	// Group by resolved actor, preserving first-seen order so output
	// stays deterministic across runs.
	byActor := make(map[string][]domain.TouchpointEvent)
	var actorOrder []string
	for _, e := range sorted {
		actor := e.ActorID
		if userID, ok := owners[actor]; ok {
			actor = userID
		}
		if _, seen := byActor[actor]; !seen {
			actorOrder = append(actorOrder, actor)
		}
		byActor[actor] = append(byActor[actor], e)
	}

	var paths []domain.ConversionPath
	for _, actor := range actorOrder {
		_, identified := identities[actor]
		paths = append(paths, buildActorPaths(actor, byActor[actor], identified, windowDays)...)
	}

	sort.SliceStable(paths, func(i, j int) bool {
		ci, cj := paths[i].Conversion(), paths[j].Conversion()
		if !ci.OccurredAt.Equal(cj.OccurredAt) {
			return ci.OccurredAt.Before(cj.OccurredAt)
		}
		return ci.IngestSeq < cj.IngestSeq
	})
	return paths
}

func buildActorPaths(actor string, events []domain.TouchpointEvent, identified bool, windowDays int) []domain.ConversionPath {
	var paths []domain.ConversionPath

	prevConversion := -1
	for i, e := range events {
		if !e.IsConversion() {
			continue
		}

		cutoff := e.OccurredAt.Add(-windowDuration(windowDays))
		var seq []domain.TouchpointEvent
		for j := prevConversion + 1; j < i; j++ {
			if events[j].OccurredAt.Before(cutoff) {
				continue
			}
			seq = append(seq, events[j])
		}
		seq = append(seq, e)

		p := domain.ConversionPath{
			ActorID:         actor,
			Events:          seq,
			ConversionValue: e.Value,
			Identified:      identified,
		}
		p.DaysToConvert = e.OccurredAt.Sub(seq[0].OccurredAt).Hours() / hoursPerDay
		paths = append(paths, p)

		prevConversion = i
	}
	return paths
}
