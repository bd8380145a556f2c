// Package repository implements the persistence contracts against a
// gorm-managed Postgres database.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/domain"
	repo "github.com/nestbank/nestbank/pkg/repository"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository using the provided
// *gorm.DB (a base handle or a transaction session).
func NewAccountRepository(db *gorm.DB) repo.AccountRepository {
	return &accountRepository{db: db}
}

// Create implements repo.AccountRepository.
func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	m := accountFromDomain(a)
	return mapStoreError(r.db.WithContext(ctx).Create(&m).Error)
}

// Get implements repo.AccountRepository.
func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapStoreError(err)
	}
	return m.toDomain(), nil
}

// GetByOwnerAndType implements repo.AccountRepository.
func (r *accountRepository) GetByOwnerAndType(ctx context.Context, ownerID uuid.UUID, t domain.AccountType) (*domain.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).First(&m, "owner_id = ? AND type = ?", ownerID, string(t)).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return m.toDomain(), nil
}

// ListByOwner implements repo.AccountRepository.
func (r *accountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	var ms []Account
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&ms).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	out := make([]*domain.Account, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].toDomain())
	}
	return out, nil
}

// AddToBalance implements repo.AccountRepository. The increment is one
// UPDATE executed inside the database; concurrent increments serialize on
// the row and none are lost. Reading the balance into the application and
// writing back a computed value would race.
func (r *accountRepository) AddToBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return mapStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNoRows
	}
	return nil
}
