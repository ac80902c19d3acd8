// Package attribution implements the attribution engine core: identity
// stitching, conversion-path construction, credit-allocation models,
// connector-conversion channel matching, and data-quality source selection.
//
// Everything in this package is a pure, synchronous computation over
// in-memory collections the caller has already fetched. No I/O, no clocks,
// no shared mutable state: identical inputs always produce identical
// outputs, including ordering, so reports are reproducible.
//
// The service layer in internal/service/report is the only intended caller.
package attribution
