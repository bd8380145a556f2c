package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/domain"
	repo "github.com/nestbank/nestbank/pkg/repository"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a session repository using the provided
// *gorm.DB.
func NewSessionRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionRepository{db: db}
}

// Create implements repo.SessionRepository.
func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	m := Session{
		ID:        s.ID,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
	return mapStoreError(r.db.WithContext(ctx).Create(&m).Error)
}

// Get implements repo.SessionRepository.
func (r *sessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var m Session
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapStoreError(err)
	}
	return m.toDomain(), nil
}

// Delete implements repo.SessionRepository. Deleting an absent session is
// reported as ErrNoRows so logout can distinguish a verified removal from a
// no-op.
func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Session{}, "id = ?", id)
	if res.Error != nil {
		return mapStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNoRows
	}
	return nil
}

// DeleteExpired implements repo.SessionRepository.
func (r *sessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&Session{}, "expires_at < ?", cutoff)
	if res.Error != nil {
		return 0, mapStoreError(res.Error)
	}
	return res.RowsAffected, nil
}
