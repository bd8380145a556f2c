package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nestbank/nestbank/pkg/repository"
	"gorm.io/gorm"
)

// mapStoreError converts driver errors to the repository sentinels. Unique
// violations are classified by constraint name so callers can branch on the
// error rather than on message text; in particular the account number
// collision must stay distinguishable because it alone drives the create
// retry loop.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNoRows
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case constraintAccountNumber:
			return repository.ErrDuplicateAccountNumber
		case constraintOwnerType:
			return repository.ErrDuplicateOwnerType
		case constraintUsername, constraintEmail:
			return repository.ErrDuplicateIdentity
		default:
			return repository.ErrDuplicate
		}
	}
	return err
}
