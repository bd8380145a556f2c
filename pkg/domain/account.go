package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AccountType distinguishes the kinds of accounts a user may hold.
// A user holds at most one account of each type.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

// ParseAccountType validates a raw account type string.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountTypeChecking:
		return AccountTypeChecking, nil
	case AccountTypeSavings:
		return AccountTypeSavings, nil
	default:
		return "", fmt.Errorf("%w: unknown account type %q", ErrValidation, s)
	}
}

// AccountStatus gates which operations an account accepts. Funding is only
// permitted while an account is active.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Account is a user's financial account.
//
// Invariants:
//   - Number is a globally unique 10-digit numeric string, immutable once
//     assigned.
//   - At most one account exists per (OwnerID, Type) pair.
//   - Balance is held in integer minor units (cents) and never goes negative
//     in this scope; it is mutated only through atomic store-level increments.
type Account struct {
	ID        uuid.UUID     `json:"id"`
	OwnerID   uuid.UUID     `json:"owner_id"`
	Number    string        `json:"account_number"`
	Type      AccountType   `json:"account_type"`
	Balance   int64         `json:"balance_cents"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// OwnedBy reports whether the account belongs to the given user.
func (a *Account) OwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

// IsActive reports whether the account accepts balance mutations.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
