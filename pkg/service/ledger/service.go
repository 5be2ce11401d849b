// Package ledger implements the Ledger Store: the command side that turns
// user actions into append-only transaction records and balance changes, and
// the query side that projects account snapshots from the log.
//
// The one rule everything here protects: withdrawals debit the balance at
// request time (an optimistic hold, restored on rejection or cancellation),
// deposits credit the balance only on approval.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-ict/ledger/pkg/config"
	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/lock"
	"github.com/moneta-ict/ledger/pkg/money"
	"github.com/moneta-ict/ledger/pkg/repository"
)

// Decision is the external resolver's verdict on a pending transaction.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Service is the Ledger Store. All balance-mutating commands for a given
// account are serialized through a keyed mutex, with an optimistic version
// check on the account row as the storage-level backstop.
type Service struct {
	uow    repository.UnitOfWork
	policy config.Ledger
	locks  *lock.Keyed
	logger *slog.Logger
}

// New creates a ledger service.
func New(uow repository.UnitOfWork, policy config.Ledger, locks *lock.Keyed, logger *slog.Logger) *Service {
	return &Service{uow: uow, policy: policy, locks: locks, logger: logger}
}

// RegisterInput carries the fields needed to open an account.
type RegisterInput struct {
	Name       string
	Email      string
	Phone      string
	Country    currency.Country
	ReferredBy string // optional referral code
}

// Register opens an account with a zero balance, grants the per-country
// welcome bonus, and credits the referrer's bonus exactly once if a valid
// referral code was supplied. An unknown referral code is ignored, not an
// error; the reference is weak.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	acct, err := domain.NewAccount().
		WithName(in.Name).
		WithEmail(in.Email).
		WithPhone(in.Phone).
		WithCountry(in.Country).
		WithReferredBy(in.ReferredBy).
		Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	limits, err := currency.LimitsFor(in.Country)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.Accounts()
		if err != nil {
			return err
		}
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		if err := accounts.Create(ctx, acct); err != nil {
			return err
		}

		if s.policy.GrantWelcomeBonus && limits.WelcomeBonus.IsPositive() {
			bonus, err := money.New(limits.WelcomeBonus, acct.Currency())
			if err != nil {
				return err
			}
			if err := txs.Create(ctx, domain.NewWelcomeBonus(acct.ID, bonus)); err != nil {
				return err
			}
			if err := acct.Credit(bonus); err != nil {
				return err
			}
			if err := accounts.Update(ctx, acct); err != nil {
				return err
			}
		}

		if s.policy.GrantReferralBonus && in.ReferredBy != "" {
			if err := s.creditReferrer(ctx, uow, acct); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account registered",
		"account_id", acct.ID, "country", acct.Country, "referred_by", acct.ReferredBy)
	return acct, nil
}

// creditReferrer grants the referral bonus to the owner of the referral
// code, at most once per referred account.
func (s *Service) creditReferrer(ctx context.Context, uow repository.UnitOfWork, referred *domain.Account) error {
	accounts, err := uow.Accounts()
	if err != nil {
		return err
	}
	txs, err := uow.Transactions()
	if err != nil {
		return err
	}
	referrer, err := accounts.GetByReferralCode(ctx, referred.ReferredBy)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("referral code does not match any account",
				"code", referred.ReferredBy, "referred_id", referred.ID)
			return nil
		}
		return err
	}
	granted, err := txs.HasReferralBonusFor(ctx, referrer.ID, referred.ID)
	if err != nil {
		return err
	}
	if granted {
		return nil
	}
	limits, err := currency.LimitsFor(referrer.Country)
	if err != nil {
		return err
	}
	bonus, err := money.New(limits.WelcomeBonus, referrer.Currency())
	if err != nil {
		return err
	}
	if err := txs.Create(ctx, domain.NewReferralBonus(referrer.ID, referred.ID, bonus)); err != nil {
		return err
	}
	if err := referrer.Credit(bonus); err != nil {
		return err
	}
	return accounts.Update(ctx, referrer)
}

// RequestDeposit validates the amount against the account country's minimum
// and appends a pending deposit transaction. The balance is untouched until
// the external resolver approves.
func (s *Service) RequestDeposit(ctx context.Context, accountID uuid.UUID, amount money.Money, proofRef string) (uuid.UUID, error) {
	var txID uuid.UUID
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
		if err := money.Validate(amount, currency.KindDeposit, acct.Country); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		t := domain.NewDeposit(accountID, amount, proofRef)
		if err := txs.Create(ctx, t); err != nil {
			return err
		}
		txID = t.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.Info("deposit requested", "account_id", accountID, "tx_id", txID, "amount", amount)
	return txID, nil
}

// AttachDepositProof records the proof-of-payment reference on a pending
// deposit. The ledger stores only the reference, never the artifact.
func (s *Service) AttachDepositProof(ctx context.Context, txID uuid.UUID, proofRef string) error {
	if proofRef == "" {
		return fmt.Errorf("%w: proof reference is required", domain.ErrValidation)
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		t, err := txs.Get(ctx, txID)
		if err != nil {
			return err
		}
		if t.Kind != domain.TxDeposit {
			return fmt.Errorf("%w: not a deposit", domain.ErrValidation)
		}
		if t.Status != domain.TxPending {
			return domain.ErrAlreadyResolved
		}
		t.ProofRef = proofRef
		return txs.Update(ctx, t)
	})
}

// RequestWithdrawal validates the amount, debits the balance immediately
// (the optimistic hold) and appends a pending withdrawal transaction. An
// insufficient balance rejects the command with no transaction record.
func (s *Service) RequestWithdrawal(ctx context.Context, accountID uuid.UUID, amount money.Money, payout domain.PayoutDetails) (uuid.UUID, error) {
	unlock := s.locks.Lock(accountID.String())
	defer unlock()

	var txID uuid.UUID
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
		if err := money.Validate(amount, currency.KindWithdrawal, acct.Country); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if payout.BankName == "" || payout.AccountNumber == "" {
			return fmt.Errorf("%w: payout details are required", domain.ErrValidation)
		}
		if err := acct.Debit(amount); err != nil {
			return err
		}
		t := domain.NewWithdrawal(accountID, amount, payout)
		if err := txs.Create(ctx, t); err != nil {
			return err
		}
		if err := accounts.Update(ctx, acct); err != nil {
			return err
		}
		txID = t.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.Info("withdrawal requested", "account_id", accountID, "tx_id", txID, "amount", amount)
	return txID, nil
}

// CancelWithdrawal cancels a withdrawal while it is still pending, restoring
// the held balance. Deposits have no cancellation path besides rejection.
func (s *Service) CancelWithdrawal(ctx context.Context, txID uuid.UUID, requester string) error {
	t, err := s.getTransaction(ctx, txID)
	if err != nil {
		return err
	}
	if t.Kind != domain.TxWithdrawal {
		return fmt.Errorf("%w: only withdrawals can be cancelled", domain.ErrValidation)
	}

	unlock := s.locks.Lock(t.AccountID.String())
	defer unlock()

	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.Accounts()
		if err != nil {
			return err
		}
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		t, err := txs.Get(ctx, txID)
		if err != nil {
			return err
		}
		if t.Status != domain.TxPending {
			return domain.ErrAlreadyResolved
		}
		if err := t.Transition(domain.TxCancelled, requester, time.Now()); err != nil {
			return err
		}
		acct, err := accounts.Get(ctx, t.AccountID)
		if err != nil {
			return err
		}
		if err := acct.Credit(t.Amount); err != nil {
			return err
		}
		if err := txs.Update(ctx, t); err != nil {
			return err
		}
		return accounts.Update(ctx, acct)
	})
}

// Resolve applies an external decision to a pending deposit or withdrawal.
// The resolver identity is recorded as supplied; authenticating it is the
// caller's concern. Resolving a transaction that already left pending fails
// with ErrAlreadyResolved.
//
// Effects are kind-dependent: approving a deposit credits the balance,
// rejecting a withdrawal restores the hold. The other two combinations touch
// only the transaction row.
func (s *Service) Resolve(ctx context.Context, txID uuid.UUID, decision Decision, resolver string) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}
	if resolver == "" {
		return fmt.Errorf("%w: resolver identity is required", domain.ErrValidation)
	}
	t, err := s.getTransaction(ctx, txID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(t.AccountID.String())
	defer unlock()

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.Accounts()
		if err != nil {
			return err
		}
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		t, err := txs.Get(ctx, txID)
		if err != nil {
			return err
		}
		if t.Kind != domain.TxDeposit && t.Kind != domain.TxWithdrawal {
			return fmt.Errorf("%w: %s transactions are not resolvable", domain.ErrValidation, t.Kind)
		}
		if t.Status != domain.TxPending {
			return domain.ErrAlreadyResolved
		}

		to := domain.TxApproved
		if decision == DecisionReject {
			to = domain.TxRejected
		}
		if err := t.Transition(to, resolver, time.Now()); err != nil {
			return err
		}
		if err := txs.Update(ctx, t); err != nil {
			return err
		}

		var balanceDelta *money.Money
		switch {
		case t.Kind == domain.TxDeposit && to == domain.TxApproved:
			balanceDelta = &t.Amount
		case t.Kind == domain.TxWithdrawal && to == domain.TxRejected:
			// Refund the hold taken at request time.
			balanceDelta = &t.Amount
		}
		if balanceDelta == nil {
			return nil
		}
		acct, err := accounts.Get(ctx, t.AccountID)
		if err != nil {
			return err
		}
		if err := acct.Credit(*balanceDelta); err != nil {
			return err
		}
		return accounts.Update(ctx, acct)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStateTransition) {
			s.logger.Warn("stale resolve attempt", "tx_id", txID, "resolver", resolver, "error", err)
		}
		return err
	}
	s.logger.Info("transaction resolved", "tx_id", txID, "decision", decision, "resolver", resolver)
	return nil
}

// Transactions returns the account's full ledger, oldest first.
func (s *Service) Transactions(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		out, err = txs.ListByAccount(ctx, accountID)
		return err
	})
	return out, err
}

// Account returns the account by ID.
func (s *Service) Account(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var acct *domain.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.Accounts()
		if err != nil {
			return err
		}
		acct, err = accounts.Get(ctx, accountID)
		return err
	})
	return acct, err
}

// PendingTransactions returns the reviewer's work queue, oldest first.
func (s *Service) PendingTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		out, err = txs.ListPending(ctx)
		return err
	})
	return out, err
}

// Transaction returns one ledger entry by ID.
func (s *Service) Transaction(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	return s.getTransaction(ctx, txID)
}

func (s *Service) getTransaction(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	var t *domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		t, err = txs.Get(ctx, txID)
		return err
	})
	return t, err
}
