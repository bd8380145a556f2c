package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/domain"
	"github.com/nestbank/nestbank/pkg/repository"
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

func TestUoW_Repositories(t *testing.T) {
	db, _ := newMockDB(t)
	uow := NewUoW(db)

	assert.NotNil(t, uow.AccountRepository())
	assert.NotNil(t, uow.TransactionRepository())
	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.SessionRepository())
}

func TestUoW_Do_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)
	accountID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`UPDATE "accounts" SET "balance"=balance \+ \$1`).
		WithArgs(int64(100), sqlmock.AnyArg(), accountID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		entry := &domain.Transaction{
			AccountID: accountID,
			Type:      domain.TransactionTypeDeposit,
			Amount:    100,
			Status:    domain.TransactionStatusCompleted,
		}
		if err := tx.TransactionRepository().Create(context.Background(), entry); err != nil {
			return err
		}
		return tx.AccountRepository().AddToBalance(context.Background(), accountID, 100)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed increment must take the already-inserted transaction row down
// with it: one commit or one rollback, never half of each.
func TestUoW_Do_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)
	accountID := uuid.New()
	updateErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`UPDATE "accounts" SET "balance"=balance \+ \$1`).
		WillReturnError(updateErr)
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		entry := &domain.Transaction{
			AccountID: accountID,
			Type:      domain.TransactionTypeDeposit,
			Amount:    100,
			Status:    domain.TransactionStatusCompleted,
		}
		if err := tx.TransactionRepository().Create(context.Background(), entry); err != nil {
			return err
		}
		return tx.AccountRepository().AddToBalance(context.Background(), accountID, 100)
	})
	assert.ErrorIs(t, err, updateErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_Do_RollsBackOnFnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)
	fnErr := errors.New("precondition failed")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		return fnErr
	})
	assert.ErrorIs(t, err, fnErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
