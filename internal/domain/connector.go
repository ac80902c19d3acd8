package domain

import "time"

// ConnectorConversion is a conversion reported by a payment or revenue
// connector (Stripe charge, Shopify order, PayPal sale). It has no browsing
// path of its own; the engine attributes it to a channel via the matching
// cascade.
type ConnectorConversion struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	// SourcePlatform names the connector that reported the conversion.
	SourcePlatform string `json:"source_platform" db:"source_platform"`

	AttributedClickID     string `json:"attributed_click_id,omitempty" db:"attributed_click_id"`
	AttributedClickIDType string `json:"attributed_click_id_type,omitempty" db:"attributed_click_id_type"`
	CustomerEmailHash     string `json:"customer_email_hash,omitempty" db:"customer_email_hash"`

	UTMSource   string `json:"utm_source,omitempty" db:"utm_source"`
	UTMMedium   string `json:"utm_medium,omitempty" db:"utm_medium"`
	UTMCampaign string `json:"utm_campaign,omitempty" db:"utm_campaign"`

	NetRevenueCents int64     `json:"net_revenue_cents" db:"net_revenue_cents"`
	OccurredAt      time.Time `json:"occurred_at" db:"occurred_at"`
}

// AttributionMethod records which cascade signal matched a connector
// conversion to its channel.
type AttributionMethod string

const (
	MethodClickID      AttributionMethod = "click_id"
	MethodUTMParams    AttributionMethod = "utm_params"
	MethodEmailHash    AttributionMethod = "email_hash"
	MethodUnattributed AttributionMethod = "unattributed"
)

// ConnectorAttributionResult is one rolled-up group of connector conversions
// that resolved to the same channel via the same method.
type ConnectorAttributionResult struct {
	Source   string `json:"utm_source"`
	Medium   string `json:"utm_medium"`
	Campaign string `json:"utm_campaign"`

	Method          AttributionMethod `json:"method"`
	ConnectorSource string            `json:"connector_source"`

	AttributedConversions int     `json:"attributed_conversions"`
	AttributedRevenue     float64 `json:"attributed_revenue"`
}
