package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/pickup/internal/remote"
)

const (
	// AccountsCollection holds credential documents, separate from the
	// public users profile collection.
	AccountsCollection = "accounts"

	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12

	// Password constraints
	minPasswordLength = 8
	maxPasswordLength = 128
)

// RemoteProvider implements Provider with accounts stored in the remote
// collection service. Passwords are bcrypt-hashed; the stable user ID is
// assigned at account creation and doubles as the profile document key.
type RemoteProvider struct {
	store remote.Store
	log   *slog.Logger

	mu      sync.Mutex
	current *Token
	changes chan *Token
	closed  bool
}

// RemoteProviderConfig holds dependencies for the provider.
type RemoteProviderConfig struct {
	Store  remote.Store
	Logger *slog.Logger
}

// NewRemoteProvider creates a provider backed by the given store.
func NewRemoteProvider(cfg RemoteProviderConfig) *RemoteProvider {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &RemoteProvider{
		store:   cfg.Store,
		log:     log,
		changes: make(chan *Token, 16),
	}
}

// SessionChanges returns the session transition stream.
func (p *RemoteProvider) SessionChanges() <-chan *Token {
	return p.changes
}

// SignIn authenticates with email and password.
func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (*Token, error) {
	email = normalizeEmail(email)

	doc, err := p.findAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrInvalidCredentials
	}

	hash, _ := doc.Fields["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token := &Token{UserID: doc.ID, Email: email}
	p.setCurrent(token)
	return token, nil
}

// CreateAccount registers a new account and signs it in.
func (p *RemoteProvider) CreateAccount(ctx context.Context, email, password string) (*Token, error) {
	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := p.findAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	fields := map[string]any{
		"email":        email,
		"passwordHash": string(hash),
		"createdAt":    time.Now().UTC(),
	}
	if err := p.store.Set(ctx, AccountsCollection, id, fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	token := &Token{UserID: id, Email: email}
	p.setCurrent(token)
	return token, nil
}

// DeleteAccount permanently removes the account behind the token. If it
// is the current session, observers are told the session ended.
func (p *RemoteProvider) DeleteAccount(ctx context.Context, token *Token) error {
	if token == nil {
		return ErrAccountNotFound
	}
	if err := p.store.Delete(ctx, AccountsCollection, token.UserID); err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	p.mu.Lock()
	current := p.current != nil && p.current.UserID == token.UserID
	p.mu.Unlock()
	if current {
		p.setCurrent(nil)
	}
	return nil
}

// SendPasswordReset records a reset code on the account. Delivery of the
// reset email is outside this process.
func (p *RemoteProvider) SendPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	doc, err := p.findAccount(ctx, email)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrAccountNotFound
	}

	fields := doc.Fields
	fields["resetCode"] = uuid.NewString()
	fields["resetRequestedAt"] = time.Now().UTC()
	if err := p.store.Set(ctx, AccountsCollection, doc.ID, fields); err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	p.log.Info("password reset issued", slog.String("account", doc.ID))
	return nil
}

// SignOut ends the current session.
func (p *RemoteProvider) SignOut(ctx context.Context) error {
	p.setCurrent(nil)
	return nil
}

// Close shuts down the change stream.
func (p *RemoteProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.changes)
	}
}

func (p *RemoteProvider) findAccount(ctx context.Context, email string) (*remote.Document, error) {
	docs, err := p.store.Get(ctx, AccountsCollection, remote.Query{
		Field: "email",
		Op:    remote.OpEqualFold,
		Value: email,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

func (p *RemoteProvider) setCurrent(token *Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = token
	if p.closed {
		return
	}
	select {
	case p.changes <- token:
	default:
		// Buffer full, the listener is behind; drop rather than block.
	}
}

// Helper functions

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	if dotIndex >= len(email)-1 {
		return false
	}
	return true
}
