// Package remote provides the document-store abstraction for PickUp.
//
// This package defines the Store interface that abstracts the remote
// collection service, allowing clean separation between sync logic and
// the concrete transport.
//
// # Interface Design
//
// The Store interface covers the five primitives the engine needs:
//
//   - Subscribe / SubscribeDoc: snapshot listeners; every delivery
//     carries the FULL current result set, not a diff
//   - Get: one-shot query
//   - Set / Delete: whole-document writes
//   - Update: atomic field operations, optionally conditioned on a
//     server-evaluated predicate at write time
//
// # Subscription Semantics
//
// Subscription errors are delivered in-band as Update.Err and do NOT end
// the stream; retry and backoff are the transport's concern. Close is
// idempotent, and after Close returns no further updates are delivered.
//
// # Conditional Updates
//
// Update with a non-nil Condition succeeds only if the predicate holds at
// write time on the server. A failed predicate yields ErrConditionFailed,
// never a partial write. This is the mechanism that keeps the capacity
// invariant true in the authoritative store regardless of local staleness.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//
//   - ErrNotFound: document does not exist
//   - ErrConditionFailed: conditional update predicate was false
//   - ErrConnection: connection issues
//   - ErrQuery: query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, remote.ErrConditionFailed) {
//	    // capacity reached between local check and write
//	}
package remote
