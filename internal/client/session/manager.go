package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

type Status int

const (
	Unauthenticated Status = iota
	Authenticating
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Backend is the part of the API the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*client.AuthResponse, error)
	Profile(ctx context.Context, token string) (*models.User, error)
}

var _ client.TokenSource = (*Manager)(nil)

// Manager is the single writer of the session state. Safe for concurrent use.
type Manager struct {
	backend Backend
	tokens  TokenStore
	logger  logging.Logger
	now     func() time.Time
	flight  singleflight.Group

	mu     sync.Mutex
	status Status
	token  string
	user   *models.User
	gen    uint64
}

func NewManager(backend Backend, tokens TokenStore, logger logging.Logger) *Manager {
	return &Manager{
		backend: backend,
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
	}
}

// Bootstrap restores the session from the stored token. Without a token it
// leaves the session Unauthenticated and returns nil; when already
// Authenticated it is a no-op. Concurrent calls share one profile fetch.
func (m *Manager) Bootstrap(ctx context.Context) error {
	_, err, _ := m.flight.Do("bootstrap", func() (any, error) {
		return nil, m.bootstrap(ctx)
	})
	return err
}

func (m *Manager) bootstrap(ctx context.Context) error {
	m.mu.Lock()
	if m.status != Unauthenticated {
		m.mu.Unlock()
		return nil
	}

	token, ok, err := m.tokens.Load(ctx)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("load token: %w", err)
	}
	if !ok {
		m.mu.Unlock()
		return nil
	}

	if exp, ok := tokenExpiry(token); ok && !exp.After(m.now()) {
		m.discardTokenLocked(ctx)
		m.mu.Unlock()
		m.logger.Info(ctx, "stored token expired", "expired_at", exp)
		return fmt.Errorf("%w: token expired", ErrNotAuthenticated)
	}

	gen := m.beginLocked(token)
	m.mu.Unlock()

	return m.fetchProfile(ctx, gen, token)
}

// Login persists token and authenticates with it. A non-nil user is trusted
// as is; otherwise the profile is fetched like Bootstrap does.
func (m *Manager) Login(ctx context.Context, token string, user *models.User) error {
	m.mu.Lock()
	if err := m.tokens.Save(ctx, token); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("save token: %w", err)
	}

	if user != nil {
		m.gen++
		u := *user
		m.status = Authenticated
		m.token = token
		m.user = &u
		m.mu.Unlock()
		m.logger.Info(ctx, "session authenticated", "user", u.Username, "role", u.Role)
		return nil
	}

	gen := m.beginLocked(token)
	m.mu.Unlock()

	return m.fetchProfile(ctx, gen, token)
}

// SignIn logs in with credentials. Failures come back as *LoginError and
// leave the session untouched.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, m.loginFailed(ctx, "sign in", err)
	}
	return m.adopt(ctx, resp)
}

// PasswordMinEntropyBits is the strength SignUp demands before contacting
// the backend.
const PasswordMinEntropyBits = 50

// SignUp registers a new account and logs into it. Weak passwords are
// rejected locally with ErrWeakPassword.
func (m *Manager) SignUp(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := passwordvalidator.Validate(password, PasswordMinEntropyBits); err != nil {
		return nil, m.loginFailed(ctx, "sign up", fmt.Errorf("%w: %w", ErrWeakPassword, err))
	}

	resp, err := m.backend.Register(ctx, username, email, password)
	if err != nil {
		return nil, m.loginFailed(ctx, "sign up", err)
	}
	return m.adopt(ctx, resp)
}

func (m *Manager) adopt(ctx context.Context, resp *client.AuthResponse) (*models.User, error) {
	if err := m.Login(ctx, resp.Token, &resp.User); err != nil {
		return nil, err
	}
	u := resp.User
	return &u, nil
}

func (m *Manager) loginFailed(ctx context.Context, op string, err error) error {
	le := &LoginError{Reason: classify(err), Err: err}
	m.logger.Warn(ctx, op+" failed", "reason", le.Reason, "error", err)
	return le
}

// Logout drops the session and the stored token. It cannot fail: a token
// that cannot be deleted is logged and the session is cleared anyway.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.status = Unauthenticated
	m.token = ""
	m.user = nil
	if err := m.tokens.Clear(ctx); err != nil {
		m.logger.Error(ctx, "failed to delete stored token", "error", err)
	}
	m.logger.Info(ctx, "session closed")
}

func (m *Manager) beginLocked(token string) uint64 {
	m.gen++
	m.status = Authenticating
	m.token = token
	m.user = nil
	return m.gen
}

func (m *Manager) fetchProfile(ctx context.Context, gen uint64, token string) error {
	user, err := m.backend.Profile(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen {
		m.logger.Debug(ctx, "ignoring stale profile fetch", "generation", gen)
		return ErrStaleSession
	}

	if err != nil {
		m.discardTokenLocked(ctx)
		m.logger.Warn(ctx, "profile fetch failed, session discarded", "error", err)
		return fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	m.status = Authenticated
	m.user = user
	m.logger.Info(ctx, "session authenticated", "user", user.Username, "role", user.Role)
	return nil
}

// discardTokenLocked resets to Unauthenticated and removes the stored token.
func (m *Manager) discardTokenLocked(ctx context.Context) {
	m.gen++
	m.status = Unauthenticated
	m.token = ""
	m.user = nil
	if err := m.tokens.Clear(ctx); err != nil {
		m.logger.Error(ctx, "failed to delete stored token", "error", err)
	}
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Authenticated is the capability check other components gate on.
func (m *Manager) Authenticated() bool {
	return m.Status() == Authenticated
}

// User returns a copy of the verified profile.
func (m *Manager) User() (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != Authenticated || m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// BearerToken yields the token only while Authenticated.
func (m *Manager) BearerToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != Authenticated {
		return "", false
	}
	return m.token, true
}

// TokenExpiry reports the exp claim of the current token, if it has one.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	token, ok := m.BearerToken()
	if !ok {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}
