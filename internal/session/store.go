package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/forgo/pickup/internal/identity"
	"github.com/forgo/pickup/internal/model"
	"github.com/forgo/pickup/internal/remote"
)

// State is the session lifecycle state.
type State string

const (
	StateSignedOut      State = "signed_out"
	StateAuthenticating State = "authenticating"
	StateSignedIn       State = "signed_in"
)

// Session is one observed point of the session lifecycle. User is non-nil
// only when State is StateSignedIn.
type Session struct {
	State State
	User  *model.Identity
}

// Store owns the current session and profile. It is the only writer of
// session state; everything else reads snapshots.
type Store struct {
	provider identity.Provider
	remote   remote.Store
	log      *slog.Logger

	mu         sync.Mutex
	state      State
	token      *identity.Token
	profile    *model.Identity
	profileSub remote.Subscription
	gen        int
	observers  map[int]chan Session
	nextObs    int
	done       chan struct{}
	closed     bool
}

// StoreConfig holds dependencies for the session store.
type StoreConfig struct {
	Provider identity.Provider
	Remote   remote.Store
	Logger   *slog.Logger
}

// NewStore creates a session store and begins watching the provider's
// session stream.
func NewStore(cfg StoreConfig) *Store {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		provider:  cfg.Provider,
		remote:    cfg.Remote,
		log:       log,
		state:     StateSignedOut,
		observers: make(map[int]chan Session),
		done:      make(chan struct{}),
	}
	go s.watchProvider()
	return s
}

// Observe returns a stream of session transitions, seeded with the
// current session, plus a cancel function. The stream never fails; on
// provider trouble it simply settles on signed-out.
func (s *Store) Observe() (<-chan Session, func()) {
	ch := make(chan Session, 16)

	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = ch
	ch <- s.sessionLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.observers[id]; ok {
			delete(s.observers, id)
			close(c)
		}
	}
	return ch, cancel
}

// CurrentProfile returns the last known profile, or nil before first
// resolution or when signed out.
func (s *Store) CurrentProfile() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// SignIn authenticates with the provider and attaches the profile
// subscription. A call while another authentication is in flight fails
// with ErrOperationInProgress.
func (s *Store) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	if err := s.beginAuth(); err != nil {
		return nil, err
	}

	token, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.failAuth()
		return nil, err
	}
	return s.activate(ctx, token), nil
}

// SignUp checks username availability, creates the account, then writes
// the profile document. A failed profile write rolls the account back and
// returns ErrProfileCreationFailed: an authenticated account without a
// profile never survives.
func (s *Store) SignUp(ctx context.Context, username, email, password string) (*model.Identity, error) {
	username = strings.TrimSpace(username)
	if len(username) < model.MinUsernameLength {
		return nil, ErrUsernameTooShort
	}

	if err := s.beginAuth(); err != nil {
		return nil, err
	}

	// Uniqueness first: a taken username never touches the provider.
	docs, err := s.remote.Get(ctx, remote.UsersCollection, remote.Query{
		Field: model.FieldUsername,
		Op:    remote.OpEqualFold,
		Value: username,
	})
	if err != nil {
		s.failAuth()
		return nil, fmt.Errorf("username check: %w", err)
	}
	if len(docs) > 0 {
		s.failAuth()
		return nil, ErrUsernameTaken
	}

	token, err := s.provider.CreateAccount(ctx, email, password)
	if err != nil {
		s.failAuth()
		return nil, err
	}

	fields := map[string]any{
		model.FieldUsername: username,
		model.FieldEmail:    token.Email,
	}
	if err := s.remote.Set(ctx, remote.UsersCollection, token.UserID, fields); err != nil {
		// Compensating action: delete the account we just created.
		if derr := s.provider.DeleteAccount(ctx, token); derr != nil {
			s.log.Error("account rollback failed",
				slog.String("user_id", token.UserID),
				slog.String("error", derr.Error()),
			)
		}
		s.failAuth()
		return nil, fmt.Errorf("%w: %v", ErrProfileCreationFailed, err)
	}

	return s.activate(ctx, token), nil
}

// SignOut tears down the profile listener, ends the provider session, and
// only then lets observers see the signed-out state. After SignOut
// returns, no stale listener callback can change CurrentProfile.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	sub := s.profileSub
	s.profileSub = nil
	s.gen++
	s.mu.Unlock()
	if sub != nil {
		sub.Close()
	}

	if err := s.provider.SignOut(ctx); err != nil {
		s.log.Warn("provider sign-out", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.token = nil
	s.profile = nil
	if s.state != StateSignedOut {
		s.state = StateSignedOut
		s.notifyLocked()
	}
	s.mu.Unlock()
	return nil
}

// SendPasswordReset delegates to the identity provider.
func (s *Store) SendPasswordReset(ctx context.Context, email string) error {
	return s.provider.SendPasswordReset(ctx, email)
}

// Close stops the provider watcher and closes all observer streams. The
// store is unusable afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	for id, ch := range s.observers {
		delete(s.observers, id)
		close(ch)
	}
}

func (s *Store) beginAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticating {
		return ErrOperationInProgress
	}
	s.state = StateAuthenticating
	s.notifyLocked()
	return nil
}

func (s *Store) failAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticating {
		return
	}
	s.state = StateSignedOut
	s.token = nil
	s.profile = nil
	s.notifyLocked()
}

// activate makes token the signed-in session: detach the old profile
// listener, bump the generation, then attach the new listener. Until the
// profile document resolves, a placeholder identity keeps the session
// renderable.
func (s *Store) activate(ctx context.Context, token *identity.Token) *model.Identity {
	s.mu.Lock()
	old := s.profileSub
	s.profileSub = nil
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	placeholder := &model.Identity{
		ID:       token.UserID,
		Username: model.PlaceholderUsername,
		Email:    token.Email,
	}

	s.mu.Lock()
	s.token = token
	s.profile = placeholder
	s.state = StateSignedIn
	s.notifyLocked()
	s.mu.Unlock()

	sub, err := s.remote.SubscribeDoc(ctx, remote.UsersCollection, token.UserID)
	if err != nil {
		s.log.Warn("profile subscription failed",
			slog.String("user_id", token.UserID),
			slog.String("error", err.Error()),
		)
		return placeholder
	}

	s.mu.Lock()
	if s.gen != gen {
		// The session moved on while we were attaching.
		s.mu.Unlock()
		sub.Close()
		return placeholder
	}
	s.profileSub = sub
	s.mu.Unlock()

	// Resolve the initial profile before returning so callers see the
	// real identity when the document already exists.
	select {
	case upd, ok := <-sub.Updates():
		if ok {
			s.applyProfileUpdate(upd, gen)
		}
	case <-ctx.Done():
	}
	go s.drainProfile(sub, gen)

	if cur := s.CurrentProfile(); cur != nil {
		return cur
	}
	return placeholder
}

func (s *Store) drainProfile(sub remote.Subscription, gen int) {
	for upd := range sub.Updates() {
		s.applyProfileUpdate(upd, gen)
	}
}

// applyProfileUpdate folds one profile delivery into state. Updates from
// a superseded listener generation are dropped: a listener torn down
// during sign-out must not resurrect the profile.
func (s *Store) applyProfileUpdate(upd remote.Update, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != StateSignedIn || s.token == nil {
		return
	}
	if upd.Err != nil {
		s.log.Warn("profile update error", slog.String("error", upd.Err.Error()))
		return
	}
	if len(upd.Docs) == 0 {
		// Document missing: the profile write is presumably still in
		// flight. Keep a renderable placeholder.
		s.profile = &model.Identity{
			ID:       s.token.UserID,
			Username: model.PlaceholderUsername,
			Email:    s.token.Email,
		}
		s.notifyLocked()
		return
	}

	ident := model.DecodeIdentity(upd.Docs[0].ID, upd.Docs[0].Fields)
	if ident.ID == "" {
		ident.ID = s.token.UserID
	}
	if ident.Email == "" {
		ident.Email = s.token.Email
	}
	s.profile = &ident
	s.notifyLocked()
}

// watchProvider folds provider-pushed session changes into state. Changes
// caused by in-flight SignIn/SignUp calls are ignored here; the call
// itself owns that transition.
func (s *Store) watchProvider() {
	for {
		select {
		case <-s.done:
			return
		case token, ok := <-s.provider.SessionChanges():
			if !ok {
				return
			}
			s.handleProviderChange(token)
		}
	}
}

func (s *Store) handleProviderChange(token *identity.Token) {
	s.mu.Lock()
	state := s.state
	sameUser := token != nil && s.token != nil && s.token.UserID == token.UserID
	s.mu.Unlock()

	if state == StateAuthenticating {
		return
	}
	if token == nil {
		if state != StateSignedOut {
			s.teardown()
		}
		return
	}
	if state == StateSignedIn && sameUser {
		return
	}
	s.activate(context.Background(), token)
}

// teardown handles provider-pushed invalidation: listener first, then the
// signed-out notification.
func (s *Store) teardown() {
	s.mu.Lock()
	sub := s.profileSub
	s.profileSub = nil
	s.gen++
	s.mu.Unlock()
	if sub != nil {
		sub.Close()
	}

	s.mu.Lock()
	s.token = nil
	s.profile = nil
	if s.state != StateSignedOut {
		s.state = StateSignedOut
		s.notifyLocked()
	}
	s.mu.Unlock()
}

func (s *Store) sessionLocked() Session {
	sess := Session{State: s.state}
	if s.profile != nil && s.state == StateSignedIn {
		p := *s.profile
		sess.User = &p
	}
	return sess
}

func (s *Store) notifyLocked() {
	sess := s.sessionLocked()
	for _, ch := range s.observers {
		select {
		case ch <- sess:
		default:
			// Observer is behind; drop rather than block the store.
		}
	}
}
