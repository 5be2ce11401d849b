// Package repository defines the data-access contracts the ledger depends
// on. Any storage engine satisfying append + indexed read by account can
// implement them; the GORM and in-memory implementations live under infra.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/moneta-ict/ledger/pkg/domain"
)

// AccountRepository is the data-access contract for accounts.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	// Update persists the account using an optimistic version check: the
	// write applies only if the stored version equals a.Version, and bumps
	// it. A stale version yields domain.ErrConcurrencyConflict.
	Update(ctx context.Context, a *domain.Account) error
}

// TransactionRepository is the data-access contract for the append-only
// transaction log. Rows are never deleted.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// ListByAccount returns all transactions for an account ordered by
	// creation time, oldest first. This is the replay order.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error)
	// Update persists status and resolution fields. Amount and kind are
	// immutable after creation.
	Update(ctx context.Context, t *domain.Transaction) error
	// ListPending returns all transactions awaiting resolution, oldest
	// first. This is the reviewer's work queue.
	ListPending(ctx context.Context) ([]*domain.Transaction, error)
	// GetByInvestment returns the transaction of the given kind linked to an
	// investment, or domain.ErrNotFound.
	GetByInvestment(ctx context.Context, investmentID uuid.UUID, kind domain.TxKind) (*domain.Transaction, error)
	// HasReferralBonusFor reports whether a referral bonus was already
	// credited to referrerID for the given referred account.
	HasReferralBonusFor(ctx context.Context, referrerID, referredID uuid.UUID) (bool, error)
}

// InvestmentRepository is the data-access contract for investments.
type InvestmentRepository interface {
	Create(ctx context.Context, inv *domain.Investment) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Investment, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Investment, error)
	// ListActive returns all active investments ordered by investment ID so
	// accrual runs process them deterministically.
	ListActive(ctx context.Context) ([]*domain.Investment, error)
	Update(ctx context.Context, inv *domain.Investment) error
}
