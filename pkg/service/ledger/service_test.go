package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta-ict/ledger/infra/repository/memory"
	"github.com/moneta-ict/ledger/pkg/config"
	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/lock"
	"github.com/moneta-ict/ledger/pkg/money"
	"github.com/moneta-ict/ledger/pkg/service/ledger"
)

func newService(t *testing.T, policy config.Ledger) *ledger.Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ledger.New(memory.NewUoW(), policy, lock.NewKeyed(), logger)
}

func cop(t *testing.T, raw string) money.Money {
	t.Helper()
	m, err := money.Parse(raw, currency.COP)
	require.NoError(t, err)
	return m
}

func register(t *testing.T, svc *ledger.Service, referredBy string) *domain.Account {
	t.Helper()
	acct, err := svc.Register(context.Background(), ledger.RegisterInput{
		Name:       "Maria Gomez",
		Email:      uuid.NewString() + "@example.com",
		Country:    currency.CountryColombia,
		ReferredBy: referredBy,
	})
	require.NoError(t, err)
	return acct
}

func TestRegister_WelcomeBonus(t *testing.T) {
	svc := newService(t, config.Ledger{GrantWelcomeBonus: true})
	acct := register(t, svc, "")

	assert.True(t, acct.Balance.Equals(cop(t, "12000")))

	list, err := svc.Transactions(context.Background(), acct.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.TxWelcomeBonus, list[0].Kind)
	assert.Equal(t, domain.TxApproved, list[0].Status)
}

func TestRegister_WelcomeBonusDisabled(t *testing.T) {
	svc := newService(t, config.Ledger{GrantWelcomeBonus: false})
	acct := register(t, svc, "")

	assert.True(t, acct.Balance.IsZero())
	list, err := svc.Transactions(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRegister_ReferralBonus(t *testing.T) {
	svc := newService(t, config.Ledger{GrantWelcomeBonus: true, GrantReferralBonus: true})
	referrer := register(t, svc, "")

	register(t, svc, referrer.ReferralCode)

	updated, err := svc.Account(context.Background(), referrer.ID)
	require.NoError(t, err)
	// Welcome bonus plus one referral bonus of the same figure.
	assert.True(t, updated.Balance.Equals(cop(t, "24000")))
}

func TestRegister_UnknownReferralCodeIgnored(t *testing.T) {
	svc := newService(t, config.Ledger{GrantWelcomeBonus: true, GrantReferralBonus: true})
	acct := register(t, svc, "ZZZZ99")
	assert.True(t, acct.Balance.Equals(cop(t, "12000")))
}

func TestRequestDeposit_PendingHasNoBalanceEffect(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	txID, err := svc.RequestDeposit(ctx, acct.ID, cop(t, "40000"), "receipt-1")
	require.NoError(t, err)

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.IsZero(), "deposit credits only on approval")

	tx, err := svc.Transaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxPending, tx.Status)
	assert.Equal(t, "receipt-1", tx.ProofRef)
}

func TestRequestDeposit_BelowMinimum(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")

	_, err := svc.RequestDeposit(context.Background(), acct.ID, cop(t, "39999"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolve_ApproveDepositCredits(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	txID, err := svc.RequestDeposit(ctx, acct.ID, cop(t, "40000"), "receipt-1")
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(ctx, txID, ledger.DecisionApprove, "ops@backoffice"))

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equals(cop(t, "40000")))

	tx, err := svc.Transaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxApproved, tx.Status)
	assert.Equal(t, "ops@backoffice", tx.ResolvedBy)
	assert.NotNil(t, tx.ResolvedAt)
}

func TestResolve_RejectDepositLeavesBalance(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	txID, err := svc.RequestDeposit(ctx, acct.ID, cop(t, "40000"), "")
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, txID, ledger.DecisionReject, "ops"))

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.IsZero())
}

func TestResolve_Twice(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	txID, err := svc.RequestDeposit(ctx, acct.ID, cop(t, "40000"), "")
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, txID, ledger.DecisionApprove, "ops-a"))

	err = svc.Resolve(ctx, txID, ledger.DecisionReject, "ops-b")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	// The first resolver's verdict stands.
	tx, err := svc.Transaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxApproved, tx.Status)
	assert.Equal(t, "ops-a", tx.ResolvedBy)

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equals(cop(t, "40000")), "no double credit")
}

func TestRequestWithdrawal_DebitsImmediately(t *testing.T) {
	svc := newService(t, config.Ledger{GrantWelcomeBonus: true})
	acct := register(t, svc, "")
	ctx := context.Background()

	fund(t, svc, acct.ID, "40000")

	txID, err := svc.RequestWithdrawal(ctx, acct.ID, cop(t, "25000"), payout())
	require.NoError(t, err)

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equals(cop(t, "27000")), "hold applies at request time")

	tx, err := svc.Transaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxPending, tx.Status)
}

func TestRequestWithdrawal_InsufficientBalance(t *testing.T) {
	svc := newService(t, config.Ledger{GrantWelcomeBonus: true})
	acct := register(t, svc, "")
	ctx := context.Background()

	_, err := svc.RequestWithdrawal(ctx, acct.ID, cop(t, "25000"), payout())
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// No transaction record, balance untouched.
	list, err := svc.Transactions(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "only the welcome bonus")

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equals(cop(t, "12000")))
}

func TestResolve_RejectWithdrawalRefundsHold(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	fund(t, svc, acct.ID, "40000")
	txID, err := svc.RequestWithdrawal(ctx, acct.ID, cop(t, "25000"), payout())
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(ctx, txID, ledger.DecisionReject, "ops"))

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equals(cop(t, "40000")), "rejection restores the hold")
}

func TestResolve_ApproveWithdrawalKeepsDebit(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	fund(t, svc, acct.ID, "40000")
	txID, err := svc.RequestWithdrawal(ctx, acct.ID, cop(t, "25000"), payout())
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(ctx, txID, ledger.DecisionApprove, "ops"))

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equals(cop(t, "15000")))
}

func TestCancelWithdrawal(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	fund(t, svc, acct.ID, "40000")
	txID, err := svc.RequestWithdrawal(ctx, acct.ID, cop(t, "25000"), payout())
	require.NoError(t, err)

	require.NoError(t, svc.CancelWithdrawal(ctx, txID, "maria"))

	after, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equals(cop(t, "40000")))

	// A resolved withdrawal can no longer be cancelled.
	err = svc.CancelWithdrawal(ctx, txID, "maria")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestAttachDepositProof(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	txID, err := svc.RequestDeposit(ctx, acct.ID, cop(t, "40000"), "")
	require.NoError(t, err)

	require.NoError(t, svc.AttachDepositProof(ctx, txID, "transfer-77412"))
	tx, err := svc.Transaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, "transfer-77412", tx.ProofRef)

	require.NoError(t, svc.Resolve(ctx, txID, ledger.DecisionApprove, "ops"))
	err = svc.AttachDepositProof(ctx, txID, "too-late")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestReplayBalance_MatchesCachedBalance(t *testing.T) {
	svc := newService(t, config.Ledger{GrantWelcomeBonus: true})
	acct := register(t, svc, "")
	ctx := context.Background()

	fund(t, svc, acct.ID, "40000")

	wd, err := svc.RequestWithdrawal(ctx, acct.ID, cop(t, "25000"), payout())
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, wd, ledger.DecisionReject, "ops"))

	dep, err := svc.RequestDeposit(ctx, acct.ID, cop(t, "40000"), "r2")
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, dep, ledger.DecisionReject, "ops"))

	cached, err := svc.Account(ctx, acct.ID)
	require.NoError(t, err)
	replayed, err := svc.ReplayBalance(ctx, acct.ID, domain.EffectPolicy{})
	require.NoError(t, err)
	assert.True(t, cached.Balance.Equals(replayed),
		"replaying the log must reproduce the cached balance, got %s vs %s", cached.Balance, replayed)
}

func TestSnapshot(t *testing.T) {
	svc := newService(t, config.Ledger{GrantWelcomeBonus: true})
	acct := register(t, svc, "")
	ctx := context.Background()

	fund(t, svc, acct.ID, "40000")
	fund(t, svc, acct.ID, "41000")

	snap, err := svc.Snapshot(ctx, acct.ID)
	require.NoError(t, err)

	assert.True(t, snap.Account.Balance.Equals(cop(t, "93000")))
	assert.True(t, snap.TotalEarnings.IsZero(), "bonuses are not daily-return earnings")
	require.Len(t, snap.RecentTransactions, 3)
	// Newest first: second deposit, first deposit, welcome bonus.
	assert.True(t, snap.RecentTransactions[0].Amount.Equals(cop(t, "41000")))
	assert.Equal(t, domain.TxWelcomeBonus, snap.RecentTransactions[2].Kind)
}

func TestResolve_Validation(t *testing.T) {
	svc := newService(t, config.Ledger{})
	acct := register(t, svc, "")
	ctx := context.Background()

	txID, err := svc.RequestDeposit(ctx, acct.ID, cop(t, "40000"), "")
	require.NoError(t, err)

	err = svc.Resolve(ctx, txID, ledger.Decision("maybe"), "ops")
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.Resolve(ctx, txID, ledger.DecisionApprove, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.Resolve(ctx, uuid.New(), ledger.DecisionApprove, "ops")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// fund credits the account through the full deposit flow.
func fund(t *testing.T, svc *ledger.Service, accountID uuid.UUID, amount string) {
	t.Helper()
	ctx := context.Background()
	txID, err := svc.RequestDeposit(ctx, accountID, cop(t, amount), "receipt")
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, txID, ledger.DecisionApprove, "ops"))
}

func payout() domain.PayoutDetails {
	return domain.PayoutDetails{BankName: "Bancolombia", AccountNumber: "123456789", AccountType: "savings"}
}
