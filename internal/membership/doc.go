// Package membership performs capacity-checked join and leave against
// event documents.
//
// The Controller is stateless: it reads the latest cached event from the
// directory to decide validity, then issues a single authoritative remote
// mutation. Any optimistic UI state belongs to the caller, which rolls it
// back when the returned result is a failure.
//
// # Capacity Protocol
//
// Join is two-phase. The local check against the cached snapshot rejects
// obviously full events without a round-trip, but the local cache can be
// stale, so the remote mutation itself carries the same predicate
// (array length below capacity) evaluated atomically at write time. That
// server-side condition, not the local check, is what keeps the capacity
// invariant true in the authoritative store under concurrent joiners.
package membership
