// Package identity abstracts the external authentication provider.
//
// The Provider interface exposes exactly what the session layer needs:
// credential operations plus a push stream of session transitions. The
// concrete implementation keeps accounts in the remote store with bcrypt
// password hashes; swapping in a hosted provider only means implementing
// Provider.
//
// Tokens are deliberately thin: a stable user ID plus the sign-in email.
// Everything else about a user lives in their profile document, owned by
// the session layer.
package identity
