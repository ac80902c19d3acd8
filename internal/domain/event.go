package domain

import "time"

// EventType distinguishes marketing interactions from conversion events.
type EventType string

const (
	EventTouchpoint EventType = "touchpoint"
	EventConversion EventType = "conversion"
)

// TouchpointEvent is one observed marketing interaction: an ad click, a
// tagged page visit, or a conversion recorded by the tracking tag. Events
// are immutable once ingested; the engine only ever reads them.
type TouchpointEvent struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	ActorID        string    `json:"actor_id" db:"actor_id"`
	EventType      EventType `json:"event_type" db:"event_type"`
	OccurredAt     time.Time `json:"occurred_at" db:"occurred_at"`
	Source         string    `json:"utm_source" db:"utm_source"`
	Medium         string    `json:"utm_medium" db:"utm_medium"`
	Campaign       string    `json:"utm_campaign" db:"utm_campaign"`
	ClickID        string    `json:"click_id,omitempty" db:"click_id"`
	ClickIDType    string    `json:"click_id_type,omitempty" db:"click_id_type"`
	EmailHash      string    `json:"email_hash,omitempty" db:"email_hash"`

	// Value is the monetary value of a conversion event. Zero for touchpoints.
	Value float64 `json:"value" db:"value"`

	// IngestSeq preserves ingestion order for same-timestamp tie-breaks.
	IngestSeq int64 `json:"-" db:"ingest_seq"`
}

// IsConversion reports whether the event terminates a conversion path.
func (e TouchpointEvent) IsConversion() bool { return e.EventType == EventConversion }

// HasChannel reports whether the event carries any channel attribution data.
func (e TouchpointEvent) HasChannel() bool { return e.Source != "" }

// IdentityLink maps one anonymous session id to the identified user that
// owns it. Many anonymous ids may map to the same user; the reverse never
// holds.
type IdentityLink struct {
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	AnonymousID    string    `json:"anonymous_id" db:"anonymous_id"`
	LinkedAt       time.Time `json:"linked_at" db:"linked_at"`
}
