package infra

import (
	"context"

	infrarepo "github.com/nestbank/nestbank/infra/repository"
	"github.com/nestbank/nestbank/pkg/repository"
	"gorm.io/gorm"
)

// UoW implements repository.UnitOfWork over gorm. Outside Do, repositories
// run against the base handle and each statement is its own implicit
// transaction; inside Do, they share one transaction that commits or rolls
// back as a unit.
type UoW struct {
	db *gorm.DB
}

// NewUoW wraps the shared database handle.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do implements repository.UnitOfWork.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: tx})
	})
}

// AccountRepository implements repository.UnitOfWork.
func (u *UoW) AccountRepository() repository.AccountRepository {
	return infrarepo.NewAccountRepository(u.db)
}

// TransactionRepository implements repository.UnitOfWork.
func (u *UoW) TransactionRepository() repository.TransactionRepository {
	return infrarepo.NewTransactionRepository(u.db)
}

// UserRepository implements repository.UnitOfWork.
func (u *UoW) UserRepository() repository.UserRepository {
	return infrarepo.NewUserRepository(u.db)
}

// SessionRepository implements repository.UnitOfWork.
func (u *UoW) SessionRepository() repository.SessionRepository {
	return infrarepo.NewSessionRepository(u.db)
}
