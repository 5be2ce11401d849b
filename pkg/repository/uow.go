package repository

import "context"

// UnitOfWork groups repository access under one transaction boundary so a
// command's effects (ledger row + cached balance + investment record) commit
// or roll back together. No partial application is ever observable.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. The UnitOfWork passed to
	// fn hands out repositories bound to that transaction. If fn returns an
	// error the transaction rolls back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Accounts() (AccountRepository, error)
	Transactions() (TransactionRepository, error)
	Investments() (InvestmentRepository, error)
}
