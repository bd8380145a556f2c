// Package ledger implements the ledger engine: account creation with
// collision retry, atomic balance funding, and ordered transaction history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/accountnumber"
	"github.com/nestbank/nestbank/pkg/domain"
	"github.com/nestbank/nestbank/pkg/repository"
)

// maxNumberAttempts bounds the account number collision retry loop. With a
// 9-billion-value space a real collision is already rare; five consecutive
// collisions indicate an infrastructure problem, not bad luck.
const maxNumberAttempts = 5

// Service orchestrates account and ledger operations. All correctness under
// concurrency is delegated to the store: uniqueness constraints resolve
// identifier races and atomic increments resolve balance races. The service
// never caches balance or identifier state across calls.
type Service struct {
	uow     repository.UnitOfWork
	numbers accountnumber.Generator
	logger  *slog.Logger
}

// New creates a ledger Service.
func New(uow repository.UnitOfWork, numbers accountnumber.Generator, logger *slog.Logger) *Service {
	return &Service{uow: uow, numbers: numbers, logger: logger}
}

// CreateAccount opens an account of the given type for the owner.
//
// Creation is optimistic: rather than checking whether a candidate number is
// free (which would race against concurrent creates), it inserts directly and
// relies on the store's unique constraint, retrying with a fresh number on a
// collision. Only the number collision is retried; every other store failure
// propagates immediately. Exhausting the retry budget surfaces as
// domain.ErrResourceExhausted.
//
// After a successful insert the persisted record is read back and returned.
// A failed read-back surfaces as domain.ErrInternal; the service never
// fabricates a placeholder account to mask a read failure after a successful
// write.
func (s *Service) CreateAccount(ctx context.Context, ownerID uuid.UUID, accountType domain.AccountType) (*domain.Account, error) {
	log := s.logger.With("context", "CreateAccount", "ownerID", ownerID, "accountType", accountType)

	accounts := s.uow.AccountRepository()

	// Fast-path precondition. The unique (owner, type) constraint remains
	// the source of truth; this check only gives a clean error without
	// burning a generated number.
	_, err := accounts.GetByOwnerAndType(ctx, ownerID, accountType)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s account already exists", domain.ErrConflict, accountType)
	case !errors.Is(err, repository.ErrNoRows):
		return nil, fmt.Errorf("%w: checking existing accounts: %v", domain.ErrInternal, err)
	}

	var createdID uuid.UUID
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		number, err := s.numbers.Generate()
		if err != nil {
			return nil, err
		}
		a := &domain.Account{
			ID:      uuid.New(),
			OwnerID: ownerID,
			Number:  number,
			Type:    accountType,
			Balance: 0,
			Status:  domain.AccountStatusActive,
		}
		err = accounts.Create(ctx, a)
		if err == nil {
			createdID = a.ID
			break
		}
		if errors.Is(err, repository.ErrDuplicateAccountNumber) {
			log.Warn("account number collision, retrying", "attempt", attempt)
			continue
		}
		if errors.Is(err, repository.ErrDuplicateOwnerType) {
			// A concurrent create for the same (owner, type) won the race.
			return nil, fmt.Errorf("%w: %s account already exists", domain.ErrConflict, accountType)
		}
		return nil, err
	}
	if createdID == uuid.Nil {
		log.Error("account number retry budget exhausted", "attempts", maxNumberAttempts)
		return nil, fmt.Errorf("%w after %d attempts", domain.ErrResourceExhausted, maxNumberAttempts)
	}

	created, err := accounts.Get(ctx, createdID)
	if err != nil {
		log.Error("account created but read-back failed", "accountID", createdID, "error", err)
		return nil, fmt.Errorf("%w: account %s was created but could not be read back: %v", domain.ErrInternal, createdID, err)
	}
	log.Info("account created", "accountID", created.ID, "number", created.Number)
	return created, nil
}

// Fund applies a deposit to the caller's account and records the matching
// ledger entry. The entry insert and the balance increment run in one store
// transaction: both commit or neither does, so a timed-out request can never
// leave a transaction row without its increment or vice versa.
//
// The increment itself is a single store-level balance = balance + amount;
// N concurrent deposits of amount A always net exactly N*A.
func (s *Service) Fund(ctx context.Context, accountID, callerID uuid.UUID, amountCents int64, description string) (*domain.Transaction, *domain.Account, error) {
	log := s.logger.With("context", "Fund", "accountID", accountID, "callerID", callerID)

	if amountCents < 1 {
		return nil, nil, fmt.Errorf("%w: funding amount must be at least 1 cent", domain.ErrValidation)
	}

	var (
		entry   *domain.Transaction
		account *domain.Account
	)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts := uow.AccountRepository()
		transactions := uow.TransactionRepository()

		acct, err := s.getOwned(ctx, accounts, accountID, callerID)
		if err != nil {
			return err
		}
		if !acct.IsActive() {
			return fmt.Errorf("%w: account is %s", domain.ErrInvalidState, acct.Status)
		}

		entry = &domain.Transaction{
			AccountID:   accountID,
			Type:        domain.TransactionTypeDeposit,
			Amount:      amountCents,
			Description: description,
			Status:      domain.TransactionStatusCompleted,
		}
		if err := transactions.Create(ctx, entry); err != nil {
			return err
		}
		if err := accounts.AddToBalance(ctx, accountID, amountCents); err != nil {
			return err
		}

		account, err = accounts.Get(ctx, accountID)
		if err != nil {
			return fmt.Errorf("%w: funding applied but account could not be read back: %v", domain.ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		log.Error("funding failed", "error", err)
		return nil, nil, err
	}
	log.Info("account funded", "transactionID", entry.ID, "amountCents", amountCents, "balanceCents", account.Balance)
	return entry, account, nil
}

// GetAccounts lists the caller's accounts.
func (s *Service) GetAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	return s.uow.AccountRepository().ListByOwner(ctx, ownerID)
}

// GetAccount retrieves a single account owned by the caller.
func (s *Service) GetAccount(ctx context.Context, accountID, callerID uuid.UUID) (*domain.Account, error) {
	return s.getOwned(ctx, s.uow.AccountRepository(), accountID, callerID)
}

// GetTransactions returns the account's history, newest first, with ties on
// the stored timestamp broken by descending id.
//
// The cost is two store round-trips regardless of history length: one read
// for the account (ownership check plus display metadata) and one for the
// entries, with the account type merged into each entry in memory. Per-entry
// metadata lookups would grow unboundedly with history size.
func (s *Service) GetTransactions(ctx context.Context, accountID, callerID uuid.UUID) ([]*domain.Transaction, error) {
	acct, err := s.getOwned(ctx, s.uow.AccountRepository(), accountID, callerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.uow.TransactionRepository().ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		e.AccountType = acct.Type
	}
	return entries, nil
}

// getOwned fetches an account and enforces ownership. Accounts owned by
// someone else report domain.ErrNotFound, identically to nonexistent ones, so
// callers cannot probe for foreign account ids.
func (s *Service) getOwned(ctx context.Context, accounts repository.AccountRepository, accountID, callerID uuid.UUID) (*domain.Account, error) {
	acct, err := accounts.Get(ctx, accountID)
	if errors.Is(err, repository.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
	}
	if err != nil {
		return nil, err
	}
	if !acct.OwnedBy(callerID) {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
	}
	return acct, nil
}
