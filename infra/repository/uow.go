// Package repository is the GORM-backed persistence layer. It maps the
// domain types onto relational rows and provides the transactional unit of
// work the services run their commands in.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/moneta-ict/ledger/pkg/repository"
)

// ErrNoTransaction is returned when a repository accessor is used outside a
// Do block.
var ErrNoTransaction = errors.New("repository access outside a transaction")

// UoW binds the repositories to one database transaction so a command's
// writes commit or roll back together.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a unit of work over the given database handle.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside a database transaction, handing it a UoW whose
// repositories share that transaction's session.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		// Already inside a transaction; nested Do joins it.
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// Accounts returns the account repository bound to the current transaction.
func (u *UoW) Accounts() (repository.AccountRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return NewAccountRepository(u.tx), nil
}

// Transactions returns the ledger repository bound to the current
// transaction.
func (u *UoW) Transactions() (repository.TransactionRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return NewTransactionRepository(u.tx), nil
}

// Investments returns the investment repository bound to the current
// transaction.
func (u *UoW) Investments() (repository.InvestmentRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return NewInvestmentRepository(u.tx), nil
}
