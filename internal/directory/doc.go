// Package directory maintains the live local cache of events.
//
// The Directory owns exactly one subscription over the events collection,
// ordered by start time. Every delivery replaces the whole cache (the
// feed is a snapshot listener, not a diff stream), so the cache is always
// the latest authoritative set the transport has produced.
//
// # Decode Policy
//
// A malformed document never drops its batch. Fields that fail to decode
// are replaced with defined defaults (unknown sport falls back to
// basketball, a missing capacity becomes 0) and each substitution is
// reported as an anomaly through the logger. See model.DecodeEvent.
//
// # Failure Semantics
//
// Subscription errors are recorded and readable via Err but do not tear
// the subscription down; the last good snapshot stays visible. A later
// successful delivery clears the error.
//
// # Projections
//
// Project derives filtered and searched views from the cache. It is pure:
// same cache, same arguments, same result, and it never mutates the
// cache. Presentation re-derives projections whenever Changes fires.
package directory
