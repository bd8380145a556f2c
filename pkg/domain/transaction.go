package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates ledger entry kinds. Only deposits are in scope.
type TransactionType string

const (
	TransactionTypeDeposit TransactionType = "deposit"
)

// TransactionStatus enumerates ledger entry states.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction is an immutable ledger entry for an account.
//
// ID is assigned by the store and is monotonic per inserting process, which
// makes it the tie-break sort key when two entries share a CreatedAt at the
// granularity the store records.
type Transaction struct {
	ID          int64             `json:"id"`
	AccountID   uuid.UUID         `json:"account_id"`
	Type        TransactionType   `json:"type"`
	Amount      int64             `json:"amount_cents"`
	Description string            `json:"description"`
	Status      TransactionStatus `json:"status"`
	AccountType AccountType       `json:"account_type,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
