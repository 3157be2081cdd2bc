package session

import "errors"

// Session errors. Provider failures (invalid credentials, email in use,
// weak password) pass through from package identity unchanged.
var (
	ErrUsernameTooShort      = errors.New("username must be at least 3 characters")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrOperationInProgress   = errors.New("authentication already in progress")
	ErrProfileCreationFailed = errors.New("profile creation failed")
)
