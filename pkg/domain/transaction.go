package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/moneta-ict/ledger/pkg/money"
)

// TxKind classifies a ledger transaction.
type TxKind string

const (
	TxDeposit       TxKind = "deposit"
	TxWithdrawal    TxKind = "withdrawal"
	TxInvestment    TxKind = "investment"
	TxDailyReturn   TxKind = "daily_return"
	TxReferralBonus TxKind = "referral_bonus"
	TxWelcomeBonus  TxKind = "welcome_bonus"
)

// TxStatus is a transaction's state-machine state.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxApproved  TxStatus = "approved"
	TxRejected  TxStatus = "rejected"
	TxActive    TxStatus = "active"
	TxCompleted TxStatus = "completed"
	TxCancelled TxStatus = "cancelled"
)

// transitions enumerates the legal state machine:
// pending → approved|rejected|cancelled for approval-gated kinds,
// active → completed|cancelled for investment-linked kinds.
var transitions = map[TxStatus][]TxStatus{
	TxPending: {TxApproved, TxRejected, TxCancelled},
	TxActive:  {TxCompleted, TxCancelled},
}

// Terminal reports whether the status accepts no further transitions.
func (s TxStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether s → to is a legal transition.
func (s TxStatus) CanTransition(to TxStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// PayoutDetails carries the bank destination for a withdrawal.
type PayoutDetails struct {
	BankName      string
	AccountNumber string
	AccountType   string
}

// Transaction is one immutable row of the append-only ledger. Amount never
// changes after creation; only Status and the resolution audit fields do, and
// only along the legal transitions.
type Transaction struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Kind      TxKind
	Amount    money.Money
	Status    TxStatus
	CreatedAt time.Time

	// Resolution audit. ResolvedBy is the already-authenticated identity of
	// the external resolver; the ledger records it, never authenticates it.
	ResolvedAt *time.Time
	ResolvedBy string

	// Kind-specific metadata.
	Payout       PayoutDetails // withdrawal
	ProofRef     string        // deposit: reference to externally stored proof artifact
	PlanID       string        // investment
	InvestmentID uuid.UUID     // investment, daily_return
	ReferredID   uuid.UUID     // referral_bonus: the account whose signup earned it
}

// NewDeposit creates a pending deposit request. No balance effect applies
// until approval.
func NewDeposit(accountID uuid.UUID, amount money.Money, proofRef string) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      TxDeposit,
		Amount:    amount,
		Status:    TxPending,
		CreatedAt: time.Now(),
		ProofRef:  proofRef,
	}
}

// NewWithdrawal creates a pending withdrawal request. The balance hold is
// applied by the ledger at request time.
func NewWithdrawal(accountID uuid.UUID, amount money.Money, payout PayoutDetails) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      TxWithdrawal,
		Amount:    amount,
		Status:    TxPending,
		CreatedAt: time.Now(),
		Payout:    payout,
	}
}

// NewInvestmentTx creates the ledger record for an investment purchase.
// Purchases need no approval, so the record starts in the active state.
func NewInvestmentTx(accountID uuid.UUID, amount money.Money, planID string, investmentID uuid.UUID) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Kind:         TxInvestment,
		Amount:       amount,
		Status:       TxActive,
		CreatedAt:    time.Now(),
		PlanID:       planID,
		InvestmentID: investmentID,
	}
}

// NewDailyReturn creates an approved daily-return credit for an investment.
func NewDailyReturn(accountID uuid.UUID, amount money.Money, investmentID uuid.UUID, at time.Time) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Kind:         TxDailyReturn,
		Amount:       amount,
		Status:       TxApproved,
		CreatedAt:    at,
		InvestmentID: investmentID,
	}
}

// NewReferralBonus creates an approved referral-bonus credit for the
// referrer. referredID identifies the signup that earned it; the ledger
// grants at most one bonus per referred account.
func NewReferralBonus(accountID, referredID uuid.UUID, amount money.Money) *Transaction {
	return &Transaction{
		ID:         uuid.New(),
		AccountID:  accountID,
		Kind:       TxReferralBonus,
		Amount:     amount,
		Status:     TxApproved,
		CreatedAt:  time.Now(),
		ReferredID: referredID,
	}
}

// NewWelcomeBonus creates an approved welcome-bonus credit for a new account.
func NewWelcomeBonus(accountID uuid.UUID, amount money.Money) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      TxWelcomeBonus,
		Amount:    amount,
		Status:    TxApproved,
		CreatedAt: time.Now(),
	}
}

// Transition moves the transaction to the given status, recording the
// resolver identity. Terminal states are immutable.
func (t *Transaction) Transition(to TxStatus, resolver string, at time.Time) error {
	if t.Status.Terminal() {
		return ErrInvalidStateTransition
	}
	if !t.Status.CanTransition(to) {
		return ErrInvalidStateTransition
	}
	t.Status = to
	t.ResolvedBy = resolver
	resolvedAt := at
	t.ResolvedAt = &resolvedAt
	return nil
}

// EffectPolicy selects the business rules that influence how transaction
// effects replay into a balance.
type EffectPolicy struct {
	// PrincipalReturned means a completed investment hands its principal
	// back, so the original debit nets out to zero after maturity.
	PrincipalReturned bool
}

// BalanceEffect returns the signed contribution of this transaction under
// the default policy (principal stays invested after maturity).
func (t *Transaction) BalanceEffect() money.Money {
	return t.BalanceEffectWith(EffectPolicy{})
}

// BalanceEffectWith returns the signed contribution of this transaction to
// the account balance in its current status. Summing effects over the full
// log reproduces the cached balance (replay determinism).
//
// The deposit/withdrawal asymmetry is deliberate: withdrawals debit at
// request time (an optimistic hold, reversed on rejection), deposits credit
// only on approval.
func (t *Transaction) BalanceEffectWith(policy EffectPolicy) money.Money {
	zero := money.Zero(t.Amount.Currency())
	switch t.Kind {
	case TxDeposit:
		if t.Status == TxApproved {
			return t.Amount
		}
	case TxWithdrawal:
		// Hold applies while pending and stays applied once approved.
		if t.Status == TxPending || t.Status == TxApproved {
			return t.Amount.Negate()
		}
	case TxInvestment:
		if t.Status == TxActive {
			return t.Amount.Negate()
		}
		if t.Status == TxCompleted && !policy.PrincipalReturned {
			return t.Amount.Negate()
		}
	case TxDailyReturn, TxReferralBonus, TxWelcomeBonus:
		if t.Status == TxApproved {
			return t.Amount
		}
	}
	return zero
}
