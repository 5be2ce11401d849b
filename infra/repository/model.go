package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is the persisted account row. Balance is the cached projection of
// the transaction log; Version backs the optimistic concurrency check.
type Account struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name         string          `gorm:"not null;size:255"`
	Email        string          `gorm:"uniqueIndex;not null;size:255"`
	Phone        string          `gorm:"size:32"`
	Country      string          `gorm:"type:varchar(2);not null"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	Balance      decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Version      int64           `gorm:"not null;default:0"`
	Role         string          `gorm:"type:varchar(16);not null;default:'user'"`
	Status       string          `gorm:"type:varchar(16);not null;default:'active'"`
	ReferralCode string          `gorm:"uniqueIndex;type:varchar(6);not null"`
	ReferredBy   string          `gorm:"type:varchar(6)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Transaction is a persisted ledger entry. Rows are append-only: after
// creation only status and resolution fields change.
type Transaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	AccountID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Kind         string          `gorm:"type:varchar(16);not null;index"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	Status       string          `gorm:"type:varchar(16);not null;index"`
	ResolvedAt   *time.Time
	ResolvedBy   string    `gorm:"size:255"`
	ProofRef     string    `gorm:"size:512"`
	BankName     string    `gorm:"size:255"`
	BankAccount  string    `gorm:"size:64"`
	BankAccType  string    `gorm:"size:32"`
	PlanID       string    `gorm:"size:32"`
	InvestmentID uuid.UUID `gorm:"type:uuid;index"`
	ReferredID   uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

// Investment is a persisted plan purchase.
type Investment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	AccountID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	PlanID          string          `gorm:"size:32;not null"`
	Principal       decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	DailyReturn     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	DurationDays    int             `gorm:"not null"`
	StartAt         time.Time       `gorm:"not null"`
	EndAt           time.Time       `gorm:"not null"`
	ReturnsCredited int             `gorm:"not null;default:0"`
	Status          string          `gorm:"type:varchar(16);not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Migrate creates or updates the schema for all ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Account{}, &Transaction{}, &Investment{})
}
