// Package middleware provides route protection for the webapi.
package middleware

import (
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nestbank/nestbank/config"
	"github.com/nestbank/nestbank/pkg/service/auth"
	"github.com/nestbank/nestbank/webapi/common"
)

// userIDKey is where SessionRequired stores the resolved caller identity.
const userIDKey = "userID"

// tokenKey is where SessionRequired stores the raw bearer token, for
// handlers that act on the session itself (logout).
const tokenKey = "sessionToken"

// Protected rejects requests whose bearer token fails signature or exp
// checks. It is the cheap first gate; SessionRequired does the session-row
// lookup behind it.
func Protected(cfg config.SessionConfig) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing or malformed bearer token", fiber.StatusUnauthorized)
		},
	})
}

// SessionRequired resolves the bearer token to a caller identity through the
// session authority. Tokens whose session row is gone or inside the expiry
// buffer are rejected even when their signature is still valid.
func SessionRequired(authSvc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		userID, err := authSvc.Validate(c.Context(), token)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		c.Locals(userIDKey, userID)
		c.Locals(tokenKey, token)
		return c.Next()
	}
}

// CallerID returns the authenticated caller set by SessionRequired.
func CallerID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(userIDKey).(uuid.UUID)
	return id, ok
}

// SessionToken returns the raw bearer token set by SessionRequired.
func SessionToken(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(tokenKey).(string)
	return token, ok
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
