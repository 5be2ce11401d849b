package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/money"
	"github.com/moneta-ict/ledger/pkg/repository"
)

// Snapshot is the dashboard projection of an account: its cached balance,
// the count of running investments, lifetime earnings from daily returns,
// and the most recent ledger entries.
type Snapshot struct {
	Account            *domain.Account
	ActiveInvestments  int
	TotalEarnings      money.Money
	RecentTransactions []*domain.Transaction
}

// recentLimit is how many ledger entries a snapshot carries, newest first.
const recentLimit = 3

// Snapshot builds the account's dashboard view in one unit of work.
func (s *Service) Snapshot(ctx context.Context, accountID uuid.UUID) (*Snapshot, error) {
	var snap Snapshot
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.Accounts()
		if err != nil {
			return err
		}
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		invs, err := uow.Investments()
		if err != nil {
			return err
		}

		acct, err := accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		snap.Account = acct

		list, err := txs.ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		earnings := money.Zero(acct.Currency())
		for _, t := range list {
			if t.Kind == domain.TxDailyReturn && t.Status == domain.TxApproved {
				earnings, err = earnings.Add(t.Amount)
				if err != nil {
					return err
				}
			}
		}
		snap.TotalEarnings = earnings

		// ListByAccount is oldest first; the snapshot wants newest first.
		n := len(list)
		for i := n - 1; i >= 0 && len(snap.RecentTransactions) < recentLimit; i-- {
			snap.RecentTransactions = append(snap.RecentTransactions, list[i])
		}

		active, err := invs.ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		for _, inv := range active {
			if inv.Status == domain.InvestmentActive {
				snap.ActiveInvestments++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ReplayBalance recomputes an account's balance by folding the balance
// effect of every transaction, oldest first, over a zero starting balance.
// The result must equal the cached Account.Balance; a mismatch means the
// log and the cache have diverged.
func (s *Service) ReplayBalance(ctx context.Context, accountID uuid.UUID, policy domain.EffectPolicy) (money.Money, error) {
	var balance money.Money
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.Accounts()
		if err != nil {
			return err
		}
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		acct, err := accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		list, err := txs.ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		balance = money.Zero(acct.Currency())
		for _, t := range list {
			balance, err = balance.Add(t.BalanceEffectWith(policy))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return money.Money{}, err
	}
	return balance, nil
}
