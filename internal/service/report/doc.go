// Package report implements the attribution reporting service layer.
//
// The service fetches everything a request needs up front (events, identity
// links, connector conversions, platform metrics, organization settings),
// hands the in-memory collections to the pure engine in
// internal/attribution, and assembles the response. It owns request
// validation, the data-source fallback wiring, and the optional Redis
// read-through cache; it performs no attribution math of its own.
//
// Repository implementations live in repository/postgres/ and
// repository/warehouse/.
package report
