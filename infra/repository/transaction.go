package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/domain"
	repo "github.com/nestbank/nestbank/pkg/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository using the
// provided *gorm.DB.
func NewTransactionRepository(db *gorm.DB) repo.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create implements repo.TransactionRepository. The store assigns the id
// and created_at; both are written back into t.
func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	m := Transaction{
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		Status:      string(t.Status),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return mapStoreError(err)
	}
	t.ID = m.ID
	t.CreatedAt = m.CreatedAt
	return nil
}

// ListByAccount implements repo.TransactionRepository. created_at is the
// primary sort key; id breaks ties between rows inserted within the same
// timestamp tick, keeping the order deterministic.
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	out := make([]*domain.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].toDomain())
	}
	return out, nil
}
