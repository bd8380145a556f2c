// Package throttle provides the redis-backed login attempt limiter.
package throttle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts login attempts per identity in a fixed window.
// Identities are keyed by hash so the plaintext username or email never
// lands in redis.
type LoginThrottle struct {
	client *redis.Client
	max    int
	window time.Duration
}

// New creates a LoginThrottle.
func New(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, max: maxAttempts, window: window}
}

// NewClient connects to redis and verifies the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func (t *LoginThrottle) key(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return "login:attempts:" + hex.EncodeToString(sum[:])
}

// Allow records an attempt and reports whether the identity is within
// budget. The window starts at the first attempt.
func (t *LoginThrottle) Allow(ctx context.Context, identity string) (bool, error) {
	k := t.key(identity)
	n, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := t.client.Expire(ctx, k, t.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(t.max), nil
}

// Reset clears the attempt count for the identity.
func (t *LoginThrottle) Reset(ctx context.Context, identity string) error {
	return t.client.Del(ctx, t.key(identity)).Err()
}
