// Package auth implements signup, login, and the session authority that
// resolves bearer tokens to caller identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nestbank/nestbank/config"
	"github.com/nestbank/nestbank/pkg/domain"
	"github.com/nestbank/nestbank/pkg/repository"
)

// ErrTooManyAttempts is returned when the login throttle rejects an
// identity. Deliberately distinct from ErrUnauthenticated so the boundary
// can answer 429 instead of 401.
var ErrTooManyAttempts = errors.New("too many login attempts")

// Throttle limits login attempts per identity. Implementations live in
// infra/throttle; a nil Throttle disables limiting.
type Throttle interface {
	// Allow records an attempt for key and reports whether it is within
	// budget.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset clears the attempt count for key.
	Reset(ctx context.Context, key string) error
}

// Service issues and validates sessions. Tokens are signed JWTs whose ID
// claim references a persisted session row; a token is only accepted while
// its row exists and has more than the expiry buffer remaining, so logout
// and server-side revocation take effect immediately regardless of the
// token's own exp claim.
type Service struct {
	uow      repository.UnitOfWork
	throttle Throttle
	cfg      config.SessionConfig
	logger   *slog.Logger
}

// New creates an auth Service.
func New(uow repository.UnitOfWork, throttle Throttle, cfg config.SessionConfig, logger *slog.Logger) *Service {
	return &Service{uow: uow, throttle: throttle, cfg: cfg, logger: logger}
}

// Signup registers a new user. A duplicate username or email surfaces as
// domain.ErrConflict.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	log := s.logger.With("context", "Signup", "username", username)

	u, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.uow.UserRepository().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			return nil, fmt.Errorf("%w: username or email already registered", domain.ErrConflict)
		}
		return nil, err
	}
	log.Info("user registered", "userID", u.ID)
	return u, nil
}

// Login verifies credentials and opens a session, returning the bearer
// token. Bad identity and bad password are reported identically.
func (s *Service) Login(ctx context.Context, identity, password string) (string, *domain.User, error) {
	log := s.logger.With("context", "Login")

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, identity)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			log.Warn("login throttled", "identity", identity)
			return "", nil, ErrTooManyAttempts
		}
	}

	u, err := s.uow.UserRepository().GetByIdentity(ctx, identity)
	if errors.Is(err, repository.ErrNoRows) {
		return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}
	if err != nil {
		return "", nil, err
	}
	if !u.CheckPassword(password) {
		log.Warn("password mismatch", "userID", u.ID)
		return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}

	sess := &domain.Session{
		ID:        uuid.New(),
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.Expiry),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.uow.SessionRepository().Create(ctx, sess); err != nil {
		return "", nil, err
	}

	token, err := s.signToken(sess)
	if err != nil {
		return "", nil, err
	}

	if s.throttle != nil {
		// A successful login clears the attempt budget; failures to do so
		// only shorten the window, so the error is logged and swallowed.
		if err := s.throttle.Reset(ctx, identity); err != nil {
			log.Warn("throttle reset failed", "error", err)
		}
	}
	log.Info("session opened", "userID", u.ID, "sessionID", sess.ID, "expiresAt", sess.ExpiresAt)
	return token, u, nil
}

// Validate resolves a bearer token to the owning user id. It requires a
// valid signature and a live session row with more than the expiry buffer
// remaining; everything else is domain.ErrUnauthenticated.
func (s *Service) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	sess, err := s.lookupSession(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	if !sess.LiveAt(time.Now().UTC()) {
		return uuid.Nil, fmt.Errorf("%w: session expired", domain.ErrUnauthenticated)
	}
	return sess.UserID, nil
}

// Logout closes the session referenced by the token. It reports success only
// when the session row was verifiably deleted; an already-gone session is an
// error, not a silent success.
func (s *Service) Logout(ctx context.Context, token string) error {
	sess, err := s.lookupSession(ctx, token)
	if err != nil {
		return err
	}
	if err := s.uow.SessionRepository().Delete(ctx, sess.ID); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return fmt.Errorf("%w: session not found", domain.ErrUnauthenticated)
		}
		return err
	}
	s.logger.Info("session closed", "sessionID", sess.ID, "userID", sess.UserID)
	return nil
}

// PurgeExpiredSessions removes sessions that expired before now and returns
// how many were removed. Exposed for the operator CLI.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.uow.SessionRepository().DeleteExpired(ctx, time.Now().UTC())
}

func (s *Service) signToken(sess *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.ID.String(),
		Subject:   sess.UserID.String(),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

// lookupSession verifies the token signature and loads the referenced
// session row.
func (s *Service) lookupSession(ctx context.Context, token string) (*domain.Session, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	sess, err := s.uow.SessionRepository().Get(ctx, sessionID)
	if errors.Is(err, repository.ErrNoRows) {
		return nil, fmt.Errorf("%w: session not found", domain.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}
