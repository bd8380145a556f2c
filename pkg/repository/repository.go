// Package repository defines the persistence contracts the services depend
// on. Implementations live under infra/repository; tests substitute fakes.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/domain"
)

// Uniqueness violations are reported as distinguishable sentinels so callers
// can branch on error classification rather than string matching. The account
// number collision in particular drives the create retry loop: it is the only
// store failure that is recovered locally.
var (
	// ErrDuplicateAccountNumber reports a collision on the global account
	// number unique constraint.
	ErrDuplicateAccountNumber = errors.New("account number already taken")
	// ErrDuplicateOwnerType reports a second account for the same
	// (owner, type) pair.
	ErrDuplicateOwnerType = errors.New("owner already has an account of this type")
	// ErrDuplicateIdentity reports a duplicate username or email.
	ErrDuplicateIdentity = errors.New("identity already registered")
	// ErrDuplicate reports a unique violation on a constraint no specific
	// sentinel covers.
	ErrDuplicate = errors.New("unique constraint violated")
	// ErrNoRows reports that a lookup matched nothing.
	ErrNoRows = errors.New("no rows found")
)

// AccountRepository persists accounts.
type AccountRepository interface {
	// Create inserts the account. Uniqueness violations surface as
	// ErrDuplicateAccountNumber or ErrDuplicateOwnerType.
	Create(ctx context.Context, a *domain.Account) error

	// Get retrieves an account by id.
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByOwnerAndType retrieves the owner's account of the given type.
	GetByOwnerAndType(ctx context.Context, ownerID uuid.UUID, t domain.AccountType) (*domain.Account, error)

	// ListByOwner lists all accounts owned by the user.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)

	// AddToBalance applies balance = balance + delta as a single store-level
	// operation. It must never be implemented as read-then-write in
	// application code; concurrent callers would lose updates.
	AddToBalance(ctx context.Context, id uuid.UUID, delta int64) error
}

// TransactionRepository persists ledger entries.
type TransactionRepository interface {
	// Create inserts the transaction and fills its store-assigned ID and
	// CreatedAt.
	Create(ctx context.Context, t *domain.Transaction) error

	// ListByAccount returns the account's transactions ordered by
	// (created_at DESC, id DESC).
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error)
}

// UserRepository persists users.
type UserRepository interface {
	// Create inserts the user. Duplicate username or email surfaces as
	// ErrDuplicateIdentity.
	Create(ctx context.Context, u *domain.User) error

	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByIdentity retrieves a user by username or email.
	GetByIdentity(ctx context.Context, identity string) (*domain.User, error)
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error

	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// Delete removes the session and reports ErrNoRows if nothing was
	// deleted. Logout only claims success when the row is verifiably gone.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes sessions that expired before the cutoff and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// UnitOfWork runs work inside a single store transaction. Repositories
// obtained from the UnitOfWork passed to fn share that transaction, so a
// transaction insert and its balance increment commit together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() AccountRepository
	TransactionRepository() TransactionRepository
	UserRepository() UserRepository
	SessionRepository() SessionRepository
}
