// Package investment implements the investment lifecycle: purchase against
// the plan catalog, daily-return accrual, and maturity completion.
package investment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/moneta-ict/ledger/pkg/config"
	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/lock"
	"github.com/moneta-ict/ledger/pkg/money"
	"github.com/moneta-ict/ledger/pkg/plan"
	"github.com/moneta-ict/ledger/pkg/repository"
)

// Service drives the investment lifecycle against the ledger.
type Service struct {
	uow     repository.UnitOfWork
	catalog *plan.Catalog
	policy  config.Investment
	locks   *lock.Keyed
	logger  *slog.Logger
}

// New creates an investment service.
func New(uow repository.UnitOfWork, catalog *plan.Catalog, policy config.Investment, locks *lock.Keyed, logger *slog.Logger) *Service {
	return &Service{uow: uow, catalog: catalog, policy: policy, locks: locks, logger: logger}
}

// Catalog exposes the plan catalog backing this service.
func (s *Service) Catalog() *plan.Catalog { return s.catalog }

// Purchase debits the principal immediately and opens an active investment
// with its linked ledger entry. The amount must meet the plan's per-country
// minimum; the daily return scales linearly with the amount invested.
func (s *Service) Purchase(ctx context.Context, accountID uuid.UUID, planID string, amount money.Money) (*domain.Investment, error) {
	p, err := s.catalog.Get(planID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(accountID.String())
	defer unlock()

	var inv *domain.Investment
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
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
		terms, err := p.TermsFor(acct.Country)
		if err != nil {
			return fmt.Errorf("%w: plan %s is not offered in %s", domain.ErrValidation, p.ID, acct.Country)
		}
		if err := money.Validate(amount, currency.KindInvestment, acct.Country); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if amount.Amount().LessThan(terms.MinInvestment) {
			minimum, err := money.New(terms.MinInvestment, acct.Currency())
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: plan %s requires at least %s", domain.ErrValidation, p.ID, minimum)
		}
		if err := acct.Debit(amount); err != nil {
			return err
		}

		daily, err := dailyReturnFor(amount, terms, acct.Country)
		if err != nil {
			return err
		}
		inv = domain.NewInvestment(accountID, p.ID, amount, daily, p.DurationDays, time.Now())
		if err := invs.Create(ctx, inv); err != nil {
			return err
		}
		if err := txs.Create(ctx, domain.NewInvestmentTx(accountID, amount, p.ID, inv.ID)); err != nil {
			return err
		}
		return accounts.Update(ctx, acct)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("investment opened",
		"account_id", accountID, "investment_id", inv.ID, "plan", planID,
		"principal", amount, "daily_return", inv.DailyReturn, "ends_at", inv.EndAt)
	return inv, nil
}

// dailyReturnFor scales the plan's reference daily return by the ratio of
// the amount invested to the plan minimum, truncated to the currency's
// decimal places so the credit is always representable.
func dailyReturnFor(amount money.Money, terms plan.Terms, country currency.Country) (money.Money, error) {
	meta, err := currency.Get(amount.Currency())
	if err != nil {
		return money.Money{}, err
	}
	scaled := terms.DailyReturn.
		Mul(amount.Amount()).
		Div(terms.MinInvestment).
		Truncate(int32(meta.Decimals))
	return money.New(scaled, amount.Currency())
}

// ListByAccount returns the account's investments.
func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Investment, error) {
	var out []*domain.Investment
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		invs, err := uow.Investments()
		if err != nil {
			return err
		}
		out, err = invs.ListByAccount(ctx, accountID)
		return err
	})
	return out, err
}

// Get returns one investment by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	var inv *domain.Investment
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		invs, err := uow.Investments()
		if err != nil {
			return err
		}
		inv, err = invs.Get(ctx, id)
		return err
	})
	return inv, err
}

// AccrueDailyReturns credits every active investment one daily_return entry
// per fully elapsed day not yet credited, capped at the plan duration. The
// pass is idempotent: running it any number of times at the same instant
// credits nothing new. Each credit is timestamped at the day boundary it
// pays for, so the ledger reads the same whether accrual ran daily or
// caught up after a gap.
func (s *Service) AccrueDailyReturns(ctx context.Context, now time.Time) (int, error) {
	credited := 0
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

		active, err := invs.ListActive(ctx)
		if err != nil {
			return err
		}
		for _, inv := range active {
			due := inv.DueReturns(now)
			if due == 0 {
				continue
			}
			acct, err := accounts.Get(ctx, inv.AccountID)
			if err != nil {
				return err
			}
			total := money.Zero(inv.DailyReturn.Currency())
			for i := 0; i < due; i++ {
				day := inv.ReturnsCredited + i + 1
				at := inv.StartAt.Add(time.Duration(day) * 24 * time.Hour)
				if err := txs.Create(ctx, domain.NewDailyReturn(inv.AccountID, inv.DailyReturn, inv.ID, at)); err != nil {
					return err
				}
				total, err = total.Add(inv.DailyReturn)
				if err != nil {
					return err
				}
			}
			if err := acct.Credit(total); err != nil {
				return err
			}
			inv.ReturnsCredited += due
			if err := invs.Update(ctx, inv); err != nil {
				return err
			}
			if err := accounts.Update(ctx, acct); err != nil {
				return err
			}
			credited += due
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if credited > 0 {
		s.logger.Info("daily returns accrued", "credits", credited)
	}
	return credited, nil
}

// CloseMatured completes every active investment whose end date has passed,
// transitions its linked ledger entry to completed, and, when the principal
// return policy is on, credits the principal back to the account. Accrual
// should run before closing so the final day's return is never skipped.
func (s *Service) CloseMatured(ctx context.Context, now time.Time) (int, error) {
	closed := 0
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

		active, err := invs.ListActive(ctx)
		if err != nil {
			return err
		}
		for _, inv := range active {
			if !inv.Matured(now) {
				continue
			}
			inv.Status = domain.InvestmentCompleted
			if err := invs.Update(ctx, inv); err != nil {
				return err
			}

			t, err := txs.GetByInvestment(ctx, inv.ID, domain.TxInvestment)
			if err != nil {
				return err
			}
			if err := t.Transition(domain.TxCompleted, "system", now); err != nil {
				return err
			}
			if err := txs.Update(ctx, t); err != nil {
				return err
			}

			if s.policy.ReturnPrincipal {
				acct, err := accounts.Get(ctx, inv.AccountID)
				if err != nil {
					return err
				}
				if err := acct.Credit(inv.Principal); err != nil {
					return err
				}
				if err := accounts.Update(ctx, acct); err != nil {
					return err
				}
			}
			closed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		s.logger.Info("matured investments closed", "count", closed, "principal_returned", s.policy.ReturnPrincipal)
	}
	return closed, nil
}
