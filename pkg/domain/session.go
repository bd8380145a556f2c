package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionExpiryBuffer is how long before a session's nominal expiry the
// service stops accepting it. Rejecting slightly early closes the window for
// edge-of-expiry races.
const SessionExpiryBuffer = 60 * time.Second

// Session is a persisted login session. The bearer token presented by a
// caller references a session by ID; a token is only valid while its session
// row exists and has more than SessionExpiryBuffer remaining.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// LiveAt reports whether the session is still acceptable at the given
// instant, applying the expiry buffer.
func (s *Session) LiveAt(now time.Time) bool {
	return s.ExpiresAt.Sub(now) > SessionExpiryBuffer
}
