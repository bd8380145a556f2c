package auth_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/nestbank/nestbank/config"
	"github.com/nestbank/nestbank/internal/fixtures"
	"github.com/nestbank/nestbank/pkg/domain"
	"github.com/nestbank/nestbank/pkg/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(store *fixtures.Store, throttle auth.Throttle) *auth.Service {
	cfg := config.SessionConfig{Secret: "test-secret", Expiry: 24 * time.Hour}
	return auth.New(store, throttle, cfg, slog.Default())
}

func signupAndLogin(t *testing.T, svc *auth.Service) (string, *domain.User) {
	t.Helper()
	_, err := svc.Signup(context.Background(), "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	token, u, err := svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	return token, u
}

func TestSignup_DuplicateIdentityConflicts(t *testing.T) {
	svc := newService(fixtures.NewStore(), nil)

	_, err := svc.Signup(context.Background(), "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "alice", "other@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Signup(context.Background(), "bob", "alice@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSignup_RejectsBadInput(t *testing.T) {
	svc := newService(fixtures.NewStore(), nil)

	_, err := svc.Signup(context.Background(), "", "a@example.com", "pw")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Signup(context.Background(), "alice", "not-an-email", "pw")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin_ValidateRoundTrip(t *testing.T) {
	svc := newService(fixtures.NewStore(), nil)
	token, u := signupAndLogin(t, svc)

	userID, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	// Email works as the login identity too.
	token2, _, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, token, token2, "each login opens a distinct session")
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newService(fixtures.NewStore(), nil)
	_, err := svc.Signup(context.Background(), "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, _, err = svc.Login(context.Background(), "nobody", "hunter22")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidate_GarbageToken(t *testing.T) {
	svc := newService(fixtures.NewStore(), nil)

	for _, token := range []string{"", "garbage", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := svc.Validate(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, "token %q", token)
	}
}

func TestValidate_RejectsInsideExpiryBuffer(t *testing.T) {
	store := fixtures.NewStore()
	svc := newService(store, nil)
	token, _ := signupAndLogin(t, svc)

	// Shrink the session so it expires 30s from now: inside the 60s buffer,
	// so validation must refuse it even though the nominal expiry has not
	// passed.
	ctx := context.Background()
	_, err := svc.Validate(ctx, token)
	require.NoError(t, err)

	store.SetSessionRemaining(30 * time.Second)
	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	// Comfortably outside the buffer it is accepted again.
	store.SetSessionRemaining(10 * time.Minute)
	_, err = svc.Validate(ctx, token)
	assert.NoError(t, err)
}

func TestLogout_VerifiedDeletion(t *testing.T) {
	svc := newService(fixtures.NewStore(), nil)
	token, _ := signupAndLogin(t, svc)

	require.NoError(t, svc.Logout(context.Background(), token))

	// The session is gone: the token no longer validates and a second
	// logout reports failure rather than a fake success.
	_, err := svc.Validate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.ErrorIs(t, svc.Logout(context.Background(), token), domain.ErrUnauthenticated)
}

func TestPurgeExpiredSessions(t *testing.T) {
	store := fixtures.NewStore()
	svc := newService(store, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	// Live sessions survive a purge.
	n, err := svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	store.SetSessionRemaining(-time.Minute)
	n, err = svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

type fixedThrottle struct {
	allowed int
	calls   int
	resets  int
}

func (f *fixedThrottle) Allow(ctx context.Context, key string) (bool, error) {
	f.calls++
	return f.calls <= f.allowed, nil
}

func (f *fixedThrottle) Reset(ctx context.Context, key string) error {
	f.resets++
	return nil
}

func TestLogin_Throttled(t *testing.T) {
	throttle := &fixedThrottle{allowed: 2}
	svc := newService(fixtures.NewStore(), throttle)
	_, err := svc.Signup(context.Background(), "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, _, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, _, err = svc.Login(context.Background(), "alice", "hunter22")
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
}

func TestLogin_SuccessResetsThrottle(t *testing.T) {
	throttle := &fixedThrottle{allowed: 10}
	svc := newService(fixtures.NewStore(), throttle)
	_, err := svc.Signup(context.Background(), "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, 1, throttle.resets)
}
