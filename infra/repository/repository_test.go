package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nestbank/nestbank/pkg/domain"
	repo "github.com/nestbank/nestbank/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func uniqueViolation(constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func TestAccountCreate_DuplicateNumberClassified(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO "accounts"`).
		WillReturnError(uniqueViolation(constraintAccountNumber))

	err := r.Create(context.Background(), &domain.Account{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Number:  "1234567890",
		Type:    domain.AccountTypeChecking,
		Status:  domain.AccountStatusActive,
	})
	assert.ErrorIs(t, err, repo.ErrDuplicateAccountNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreate_DuplicateOwnerTypeClassified(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO "accounts"`).
		WillReturnError(uniqueViolation(constraintOwnerType))

	err := r.Create(context.Background(), &domain.Account{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Number:  "1234567890",
		Type:    domain.AccountTypeChecking,
		Status:  domain.AccountStatusActive,
	})
	assert.ErrorIs(t, err, repo.ErrDuplicateOwnerType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreate_UnanticipatedConstraintStaysInRepositoryVocabulary(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO "accounts"`).
		WillReturnError(uniqueViolation("idx_accounts_future_constraint"))

	err := r.Create(context.Background(), &domain.Account{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Number:  "1234567890",
		Type:    domain.AccountTypeChecking,
		Status:  domain.AccountStatusActive,
	})
	assert.ErrorIs(t, err, repo.ErrDuplicate)
	assert.NotErrorIs(t, err, repo.ErrDuplicateAccountNumber)
	assert.NotErrorIs(t, err, repo.ErrDuplicateOwnerType)
}

func TestAccountGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repo.ErrNoRows)
}

func TestAddToBalance_SingleAtomicUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewAccountRepository(db)
	id := uuid.New()

	// The increment must be computed inside the database, not read into the
	// application and written back.
	mock.ExpectExec(`UPDATE "accounts" SET "balance"=balance \+ \$1`).
		WithArgs(int64(500), sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.AddToBalance(context.Background(), id, 500))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToBalance_MissingAccount(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewAccountRepository(db)

	mock.ExpectExec(`UPDATE "accounts"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.AddToBalance(context.Background(), uuid.New(), 500)
	assert.ErrorIs(t, err, repo.ErrNoRows)
}

func TestTransactionCreate_StoreAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewTransactionRepository(db)

	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	entry := &domain.Transaction{
		AccountID:   uuid.New(),
		Type:        domain.TransactionTypeDeposit,
		Amount:      100,
		Status:      domain.TransactionStatusCompleted,
		Description: "card deposit",
	}
	require.NoError(t, r.Create(context.Background(), entry))
	assert.Equal(t, int64(42), entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestTransactionList_DualKeyOrdering(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewTransactionRepository(db)
	accountID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE account_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(accountID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "account_id", "type", "amount", "description", "status", "created_at"}).
			AddRow(int64(2), accountID, "deposit", int64(200), "", "completed", now).
			AddRow(int64(1), accountID, "deposit", int64(100), "", "completed", now))

	entries, err := r.ListByAccount(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_DuplicateIdentity(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(uniqueViolation(constraintEmail))

	err := r.Create(context.Background(), &domain.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
	})
	assert.ErrorIs(t, err, repo.ErrDuplicateIdentity)
}

func TestSessionDelete_ReportsMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewSessionRepository(db)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM "sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, r.Delete(context.Background(), id))

	mock.ExpectExec(`DELETE FROM "sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, r.Delete(context.Background(), id), repo.ErrNoRows)
}
