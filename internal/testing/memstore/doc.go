// Package memstore is an in-memory remote.Store for tests.
//
// It reproduces the transport contract the engine relies on: every
// subscription delivery is a full ordered snapshot, conditional updates
// are evaluated atomically, and subscription errors are delivered in-band
// without ending the stream (injected with EmitError).
//
// Error injection fields (SetErr, UpdateErr, ...) follow the same style
// as the hand-rolled repository mocks in the service tests: set the field
// and the next matching call fails with it.
package memstore
