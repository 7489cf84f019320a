package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ---- fakes ----

type memTokens struct {
	mu      sync.Mutex
	token   string
	has     bool
	loadErr error
	clearEr error
	clears  int
}

func (s *memTokens) Load(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.has, s.loadErr
}

func (s *memTokens) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.has = token, true
	return nil
}

func (s *memTokens) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearEr != nil {
		return s.clearEr
	}
	s.token, s.has = "", false
	return nil
}

func (s *memTokens) stored() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.has
}

type fakeBackend struct {
	profileCalls atomic.Int32

	// when set, Profile signals started and waits on release
	started chan struct{}
	release chan struct{}

	user       *models.User
	profileErr error
	auth       *client.AuthResponse
	authErr    error
}

func (f *fakeBackend) Login(context.Context, string, string) (*client.AuthResponse, error) {
	return f.auth, f.authErr
}

func (f *fakeBackend) Register(context.Context, string, string, string) (*client.AuthResponse, error) {
	return f.auth, f.authErr
}

func (f *fakeBackend) Profile(ctx context.Context, token string) (*models.User, error) {
	f.profileCalls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	u := *f.user
	return &u, nil
}

var ann = &models.User{ID: 7, Username: "ann", Email: "ann@example.com", Role: "user"}

func newManager(b Backend, ts TokenStore) *Manager {
	return NewManager(b, ts, logging.Nop())
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// ---- tests ----

func TestBootstrap_NoToken(t *testing.T) {
	b := &fakeBackend{user: ann}
	m := newManager(b, &memTokens{})

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, Unauthenticated, m.Status())
	assert.Zero(t, b.profileCalls.Load())
}

func TestBootstrap_ValidToken(t *testing.T) {
	b := &fakeBackend{user: ann}
	ts := &memTokens{token: "opaque", has: true}
	m := newManager(b, ts)

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.True(t, m.Authenticated())

	u, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, "ann", u.Username)

	tok, ok := m.BearerToken()
	require.True(t, ok)
	assert.Equal(t, "opaque", tok)

	// idempotent once authenticated
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, int32(1), b.profileCalls.Load())
}

func TestBootstrap_ProfileFailureDiscardsToken(t *testing.T) {
	b := &fakeBackend{profileErr: client.ErrUnauthorized}
	ts := &memTokens{token: "stale", has: true}
	m := newManager(b, ts)

	err := m.Bootstrap(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, Unauthenticated, m.Status())

	_, has := ts.stored()
	assert.False(t, has)

	// no loop: the next bootstrap finds nothing to retry
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, int32(1), b.profileCalls.Load())
}

func TestBootstrap_ExpiredJWTSkipsNetwork(t *testing.T) {
	b := &fakeBackend{user: ann}
	ts := &memTokens{token: signedToken(t, time.Now().Add(-time.Hour)), has: true}
	m := newManager(b, ts)

	err := m.Bootstrap(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, b.profileCalls.Load())

	_, has := ts.stored()
	assert.False(t, has)
}

func TestBootstrap_LoadError(t *testing.T) {
	ts := &memTokens{loadErr: errors.New("disk gone")}
	m := newManager(&fakeBackend{user: ann}, ts)

	err := m.Bootstrap(context.Background())
	require.ErrorContains(t, err, "disk gone")
	assert.Equal(t, Unauthenticated, m.Status())
}

func TestBootstrap_LogoutWinsOverLateFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := &fakeBackend{
		user:    ann,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	ts := &memTokens{token: "opaque", has: true}
	m := newManager(b, ts)

	done := make(chan error, 1)
	go func() { done <- m.Bootstrap(context.Background()) }()

	<-b.started
	assert.Equal(t, Authenticating, m.Status())

	m.Logout(context.Background())
	close(b.release)

	require.ErrorIs(t, <-done, ErrStaleSession)
	assert.Equal(t, Unauthenticated, m.Status())
	_, ok := m.User()
	assert.False(t, ok)
	_, ok = m.BearerToken()
	assert.False(t, ok)
}

func TestBootstrap_ConcurrentCallsShareFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := &fakeBackend{
		user:    ann,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := newManager(b, &memTokens{token: "opaque", has: true})

	first := make(chan error, 1)
	go func() { first <- m.Bootstrap(context.Background()) }()
	<-b.started

	second := make(chan error, 1)
	go func() { second <- m.Bootstrap(context.Background()) }()

	// give the second caller time to join the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(b.release)

	require.NoError(t, <-first)
	require.NoError(t, <-second)
	assert.True(t, m.Authenticated())
	assert.Equal(t, int32(1), b.profileCalls.Load())
}

func TestLogin_WithUserSkipsFetch(t *testing.T) {
	b := &fakeBackend{}
	ts := &memTokens{}
	m := newManager(b, ts)

	require.NoError(t, m.Login(context.Background(), "tok", ann))
	assert.True(t, m.Authenticated())
	assert.Zero(t, b.profileCalls.Load())

	stored, has := ts.stored()
	require.True(t, has)
	assert.Equal(t, "tok", stored)
}

func TestLogin_WithoutUserFetchesProfile(t *testing.T) {
	b := &fakeBackend{user: ann}
	m := newManager(b, &memTokens{})

	require.NoError(t, m.Login(context.Background(), "tok", nil))
	u, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, uint(7), u.ID)
	assert.Equal(t, int32(1), b.profileCalls.Load())
}

func TestLogout_NeverFails(t *testing.T) {
	ts := &memTokens{clearEr: errors.New("locked")}
	m := newManager(&fakeBackend{}, ts)
	require.NoError(t, m.Login(context.Background(), "tok", ann))

	m.Logout(context.Background())
	assert.Equal(t, Unauthenticated, m.Status())
	assert.Equal(t, 1, ts.clears)

	// logging out twice is fine
	m.Logout(context.Background())
	assert.Equal(t, Unauthenticated, m.Status())
}

func TestSignIn(t *testing.T) {
	b := &fakeBackend{auth: &client.AuthResponse{Token: "tok", User: *ann}}
	ts := &memTokens{}
	m := newManager(b, ts)

	u, err := m.SignIn(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ann", u.Username)
	assert.True(t, m.Authenticated())

	stored, _ := ts.stored()
	assert.Equal(t, "tok", stored)
}

func TestSignIn_FailureReasons(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{"no connection", client.ErrUnavailable, ReasonNoConnection},
		{"timeout", context.DeadlineExceeded, ReasonNoConnection},
		{"rejected", client.ErrInvalidCredentials, ReasonRejected},
		{"wrapped rejected", fmt.Errorf("login: %w", client.ErrUnauthorized), ReasonRejected},
		{"other", errors.New("boom"), ReasonOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.err
			b := &fakeBackend{authErr: err}
			m := newManager(b, &memTokens{})

			_, got := m.SignIn(context.Background(), "a", "b")
			var le *LoginError
			require.ErrorAs(t, got, &le)
			assert.Equal(t, tt.want, le.Reason)
			assert.ErrorIs(t, got, err)
			assert.Equal(t, Unauthenticated, m.Status())
		})
	}
}

const strongPassword = "correct-horse-battery-staple-42"

func TestSignUp(t *testing.T) {
	b := &fakeBackend{auth: &client.AuthResponse{Token: "tok", User: *ann}}
	m := newManager(b, &memTokens{})

	u, err := m.SignUp(context.Background(), "ann", "ann@example.com", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, "ann", u.Username)
	assert.True(t, m.Authenticated())
}

func TestSignUp_Rejected(t *testing.T) {
	b := &fakeBackend{authErr: client.ErrInvalidCredentials}
	m := newManager(b, &memTokens{})

	_, err := m.SignUp(context.Background(), "ann", "ann@example.com", strongPassword)
	var le *LoginError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ReasonRejected, le.Reason)
	assert.ErrorIs(t, err, client.ErrInvalidCredentials)
}

func TestSignUp_WeakPasswordNeverReachesBackend(t *testing.T) {
	b := &fakeBackend{auth: &client.AuthResponse{Token: "tok", User: *ann}}
	m := newManager(b, &memTokens{})

	_, err := m.SignUp(context.Background(), "ann", "ann@example.com", "secret")
	var le *LoginError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ReasonRejected, le.Reason)
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.False(t, m.Authenticated())
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	m := newManager(&fakeBackend{}, &memTokens{})

	_, ok := m.TokenExpiry()
	assert.False(t, ok)

	require.NoError(t, m.Login(context.Background(), signedToken(t, exp), ann))
	got, ok := m.TokenExpiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	require.NoError(t, m.Login(context.Background(), "opaque", ann))
	_, ok = m.TokenExpiry()
	assert.False(t, ok)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "authenticating", Authenticating.String())
	assert.Equal(t, "authenticated", Authenticated.String())
}
