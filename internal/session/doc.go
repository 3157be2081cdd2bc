// Package session owns the process-wide session and profile state.
//
// The Store is the single writer of session state. It ties the identity
// provider's session stream to the user's profile document in the remote
// store: signing in attaches exactly one profile listener, signing out
// detaches it before any observer sees the signed-out state.
//
// # Listener Lifecycle
//
// The rule is "detach old, attach new": a session transition always tears
// down the previous profile listener before attaching the next one, so
// there is never overlap and never a leak. Every attach bumps a
// generation counter, and profile updates carry the generation they were
// attached under; a delayed callback from a stale listener is dropped
// instead of resurrecting the old profile.
//
// # Sign-Up Atomicity
//
// Sign-up writes the profile document right after account creation. If
// that write fails, the just-created account is deleted again and
// ErrProfileCreationFailed is returned. An
// authenticated account without a profile document never survives
// sign-up.
//
// # Observation
//
// Observe returns a buffered channel seeded with the current session and
// fed every transition. Slow observers have updates dropped rather than
// blocking the store.
package session
