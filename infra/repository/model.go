package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/nestbank/nestbank/pkg/domain"
	"gorm.io/gorm"
)

// Constraint names are load-bearing: error classification in errors.go keys
// on them to tell an account number collision apart from a duplicate
// (owner, type) pair.
const (
	constraintAccountNumber = "idx_accounts_number"
	constraintOwnerType     = "idx_accounts_owner_type"
	constraintUsername      = "idx_users_username"
	constraintEmail         = "idx_users_email"
)

// Account is the accounts table row.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_owner_type"`
	Type      string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_accounts_owner_type"`
	Number    string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_accounts_number"`
	Balance   int64     `gorm:"not null"`
	Status    string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string { return "accounts" }

func (a *Account) toDomain() *domain.Account {
	return &domain.Account{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Number:    a.Number,
		Type:      domain.AccountType(a.Type),
		Balance:   a.Balance,
		Status:    domain.AccountStatus(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func accountFromDomain(a *domain.Account) Account {
	return Account{
		ID:      a.ID,
		OwnerID: a.OwnerID,
		Type:    string(a.Type),
		Number:  a.Number,
		Balance: a.Balance,
		Status:  string(a.Status),
	}
}

// Transaction is the transactions table row. The bigserial ID doubles as the
// ordering tie-break for rows sharing a created_at tick.
type Transaction struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index:idx_transactions_account"`
	Type        string    `gorm:"type:varchar(16);not null"`
	Amount      int64     `gorm:"not null"`
	Description string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `gorm:"index:idx_transactions_account"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        domain.TransactionType(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		Status:      domain.TransactionStatus(t.Status),
		CreatedAt:   t.CreatedAt,
	}
}

// User is the users table row.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_users_username"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string { return "users" }

func (u *User) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Session is the sessions table row.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName specifies the table name for the Session model.
func (Session) TableName() string { return "sessions" }

func (s *Session) toDomain() *domain.Session {
	return &domain.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Account{}, &Transaction{}, &Session{})
}
