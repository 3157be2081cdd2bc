package identity

import (
	"context"
	"errors"
)

// Authentication errors. Use errors.Is() to classify failures.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrAccountNotFound    = errors.New("account not found")
	ErrNetwork            = errors.New("identity provider unreachable")
)

// Token is an authenticated session handle: the provider-assigned stable
// user ID and the email the account was created with.
type Token struct {
	UserID string
	Email  string
}

// Provider is the external authentication service. All credential
// operations suspend until the provider answers; session transitions are
// additionally pushed on the SessionChanges stream (a nil token means
// signed out).
type Provider interface {
	// SessionChanges returns the push stream of session transitions. The
	// channel is owned by the provider and closed on shutdown.
	SessionChanges() <-chan *Token

	// SignIn authenticates with email and password.
	SignIn(ctx context.Context, email, password string) (*Token, error)

	// CreateAccount registers a new account and signs it in.
	CreateAccount(ctx context.Context, email, password string) (*Token, error)

	// DeleteAccount permanently removes the account behind the token.
	// Used as the compensating action when profile creation fails after
	// account creation succeeded.
	DeleteAccount(ctx context.Context, token *Token) error

	// SendPasswordReset issues a password reset for the account.
	SendPasswordReset(ctx context.Context, email string) error

	// SignOut ends the current session.
	SignOut(ctx context.Context) error
}
