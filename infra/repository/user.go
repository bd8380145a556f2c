package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/domain"
	repo "github.com/nestbank/nestbank/pkg/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository using the provided *gorm.DB.
func NewUserRepository(db *gorm.DB) repo.UserRepository {
	return &userRepository{db: db}
}

// Create implements repo.UserRepository.
func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	m := User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
	return mapStoreError(r.db.WithContext(ctx).Create(&m).Error)
}

// Get implements repo.UserRepository.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapStoreError(err)
	}
	return m.toDomain(), nil
}

// GetByIdentity implements repo.UserRepository; identity may be a username
// or an email.
func (r *userRepository) GetByIdentity(ctx context.Context, identity string) (*domain.User, error) {
	var m User
	err := r.db.WithContext(ctx).First(&m, "username = ? OR email = ?", identity, identity).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return m.toDomain(), nil
}
