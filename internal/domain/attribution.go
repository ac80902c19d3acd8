package domain

// ConversionPath is the ordered sequence of touchpoints one actor produced
// before converting. Derived per request, never persisted.
//
// Invariants:
//   - Events are sorted ascending by OccurredAt (ingestion order breaks ties)
//   - The last element is always the conversion event
//   - No event earlier than the attribution-window cutoff is included
type ConversionPath struct {
	ActorID string            `json:"actor_id"`
	Events  []TouchpointEvent `json:"events"`

	ConversionValue float64 `json:"conversion_value"`
	DaysToConvert   float64 `json:"days_to_convert"`

	// Identified is true when the actor resolved to a known user id,
	// false when the path is built from anonymous sessions only.
	Identified bool `json:"identified"`
}

// Conversion returns the terminal conversion event of the path.
func (p ConversionPath) Conversion() TouchpointEvent {
	return p.Events[len(p.Events)-1]
}

// AttributionResult is the credit split for one path under one model.
// Credits is index-aligned with the path's touchpoints and sums to 1.0
// within floating-point tolerance.
type AttributionResult struct {
	Credits       []float64 `json:"credits"`
	PathLength    int       `json:"path_length"`
	DaysToConvert float64   `json:"days_to_convert"`
}

// ChannelAttribution is one aggregate row of an attribution report: all
// credit earned by a (source, medium, campaign) channel across the paths
// that were fed in.
type ChannelAttribution struct {
	Source   string `json:"utm_source"`
	Medium   string `json:"utm_medium"`
	Campaign string `json:"utm_campaign"`

	Touchpoints           int     `json:"touchpoints"`
	ConversionsInPath     int     `json:"conversions_in_path"`
	AttributedConversions float64 `json:"attributed_conversions"`
	AttributedRevenue     float64 `json:"attributed_revenue"`
	AvgPositionInPath     float64 `json:"avg_position_in_path"`
}
