package throttle_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nestbank/nestbank/infra/throttle"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThrottle(t *testing.T, max int, window time.Duration) (*throttle.LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return throttle.New(client, max, window), mr
}

func TestAllow_WithinBudget(t *testing.T) {
	th, _ := newThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := range 3 {
		ok, err := th.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}
	ok, err := th.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok, "attempt over budget must be rejected")

	// Other identities are unaffected.
	ok, err = th.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_WindowExpires(t *testing.T) {
	th, mr := newThrottle(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := th.Allow(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = th.Allow(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = th.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok, "budget must refill after the window")
}

func TestReset(t *testing.T) {
	th, _ := newThrottle(t, 1, time.Minute)
	ctx := context.Background()

	_, err := th.Allow(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, th.Reset(ctx, "alice"))

	ok, err := th.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdentityNotStoredInPlaintext(t *testing.T) {
	th, mr := newThrottle(t, 1, time.Minute)
	_, err := th.Allow(context.Background(), "alice@example.com")
	require.NoError(t, err)

	for _, k := range mr.Keys() {
		assert.NotContains(t, k, "alice@example.com")
	}
}
