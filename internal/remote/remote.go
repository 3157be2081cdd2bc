package remote

import (
	"context"
	"errors"
)

// Collection names used by the engine. Field names inside each document
// are part of the wire contract documented in package model.
const (
	UsersCollection  = "users"
	EventsCollection = "events"
)

// Standard errors for remote operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConditionFailed indicates a conditional update's predicate was
	// false at write time. The write did not happen.
	ErrConditionFailed = errors.New("update condition failed")

	// ErrConnection indicates a failure to connect to or communicate with
	// the remote store.
	ErrConnection = errors.New("remote connection error")

	// ErrQuery indicates a query execution failure.
	ErrQuery = errors.New("query error")
)

// Document is a raw remote document: its ID plus untyped fields. Decoding
// into model types happens in the consumers, which own the defaults for
// malformed fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// Update is one delivery from a snapshot listener: either the full
// current result set or an in-band error. An error never terminates the
// subscription; the previous good snapshot stays valid.
type Update struct {
	Docs []Document
	Err  error
}

// Subscription is a live snapshot listener.
type Subscription interface {
	// Updates returns the delivery channel. The channel is closed only by
	// Close, never by a transport error.
	Updates() <-chan Update

	// Close cancels the subscription. Safe to call multiple times. After
	// Close returns, no further updates are delivered.
	Close()
}

// QueryOp selects the comparison used by a one-shot Get.
type QueryOp string

const (
	// OpEqual matches on exact equality.
	OpEqual QueryOp = "equal"

	// OpEqualFold matches string fields case-insensitively.
	OpEqualFold QueryOp = "equal_fold"
)

// Query is a single-field predicate for Get.
type Query struct {
	Field string
	Op    QueryOp
	Value any
}

// FieldOpKind identifies an atomic field operation.
type FieldOpKind string

const (
	FieldOpArrayUnion  FieldOpKind = "array_union"
	FieldOpArrayRemove FieldOpKind = "array_remove"
)

// FieldOp is one atomic mutation of a document field.
type FieldOp struct {
	Kind  FieldOpKind
	Field string
	Value any
}

// ArrayUnion adds value to an array field if not already present.
// Set semantics: no duplicates.
func ArrayUnion(field string, value any) FieldOp {
	return FieldOp{Kind: FieldOpArrayUnion, Field: field, Value: value}
}

// ArrayRemove removes every occurrence of value from an array field.
// A no-op when the value is absent.
func ArrayRemove(field string, value any) FieldOp {
	return FieldOp{Kind: FieldOpArrayRemove, Field: field, Value: value}
}

// Condition is a server-evaluated predicate attached to an Update. The
// update applies only if the predicate holds at write time. The limit is
// read from another field of the same document, not from a client value,
// so the predicate stays true to the document even when the client's view
// of it is stale.
type Condition struct {
	Field      string
	LimitField string
}

// ArrayLenBelowField builds the predicate "len(field) < doc.limitField",
// evaluated atomically with the update on the server.
func ArrayLenBelowField(field, limitField string) *Condition {
	return &Condition{Field: field, LimitField: limitField}
}

// Store defines the operations the engine needs from the remote
// collection service. Transports implement it; tests use the in-memory
// implementation under internal/testing/memstore.
type Store interface {
	// Subscribe opens a snapshot listener over a whole collection,
	// ordered by the given field.
	Subscribe(ctx context.Context, collection, orderBy string, desc bool) (Subscription, error)

	// SubscribeDoc opens a snapshot listener over a single document. An
	// update with zero docs means the document does not exist.
	SubscribeDoc(ctx context.Context, collection, id string) (Subscription, error)

	// Get runs a one-shot query and returns the matching documents.
	Get(ctx context.Context, collection string, q Query) ([]Document, error)

	// Set writes a whole document, creating or replacing it.
	Set(ctx context.Context, collection, id string, fields map[string]any) error

	// Update applies atomic field operations, optionally guarded by a
	// condition evaluated at write time.
	Update(ctx context.Context, collection, id string, ops []FieldOp, cond *Condition) error

	// Delete removes a document.
	Delete(ctx context.Context, collection, id string) error
}
