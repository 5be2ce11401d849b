package investment_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta-ict/ledger/infra/repository/memory"
	"github.com/moneta-ict/ledger/pkg/config"
	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/lock"
	"github.com/moneta-ict/ledger/pkg/money"
	"github.com/moneta-ict/ledger/pkg/plan"
	"github.com/moneta-ict/ledger/pkg/service/investment"
	"github.com/moneta-ict/ledger/pkg/service/ledger"
)

type fixture struct {
	ledger     *ledger.Service
	investment *investment.Service
	account    *domain.Account
}

func newFixture(t *testing.T, policy config.Investment) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := memory.NewUoW()
	locks := lock.NewKeyed()

	ledgerSvc := ledger.New(uow, config.Ledger{}, locks, logger)
	investmentSvc := investment.New(uow, plan.Default(), policy, locks, logger)

	acct, err := ledgerSvc.Register(context.Background(), ledger.RegisterInput{
		Name:    "Maria Gomez",
		Email:   uuid.NewString() + "@example.com",
		Country: currency.CountryColombia,
	})
	require.NoError(t, err)

	return &fixture{ledger: ledgerSvc, investment: investmentSvc, account: acct}
}

func cop(t *testing.T, raw string) money.Money {
	t.Helper()
	m, err := money.Parse(raw, currency.COP)
	require.NoError(t, err)
	return m
}

func (f *fixture) fund(t *testing.T, amount string) {
	t.Helper()
	ctx := context.Background()
	txID, err := f.ledger.RequestDeposit(ctx, f.account.ID, cop(t, amount), "receipt")
	require.NoError(t, err)
	require.NoError(t, f.ledger.Resolve(ctx, txID, ledger.DecisionApprove, "ops"))
}

func (f *fixture) balance(t *testing.T) money.Money {
	t.Helper()
	acct, err := f.ledger.Account(context.Background(), f.account.ID)
	require.NoError(t, err)
	return acct.Balance
}

func TestPurchase(t *testing.T) {
	f := newFixture(t, config.Investment{})
	f.fund(t, "100000")
	ctx := context.Background()

	inv, err := f.investment.Purchase(ctx, f.account.ID, "starter", cop(t, "50000"))
	require.NoError(t, err)

	assert.Equal(t, "starter", inv.PlanID)
	assert.Equal(t, 30, inv.DurationDays)
	assert.True(t, inv.DailyReturn.Equals(cop(t, "8600")), "daily return at the plan minimum")
	assert.Equal(t, domain.InvestmentActive, inv.Status)

	assert.True(t, f.balance(t).Equals(cop(t, "50000")), "principal debits at purchase")

	// The linked ledger entry is active.
	list, err := f.ledger.Transactions(ctx, f.account.ID)
	require.NoError(t, err)
	last := list[len(list)-1]
	assert.Equal(t, domain.TxInvestment, last.Kind)
	assert.Equal(t, domain.TxActive, last.Status)
	assert.Equal(t, inv.ID, last.InvestmentID)
}

func TestPurchase_ScalesDailyReturn(t *testing.T) {
	f := newFixture(t, config.Investment{})
	f.fund(t, "100000")

	inv, err := f.investment.Purchase(context.Background(), f.account.ID, "starter", cop(t, "100000"))
	require.NoError(t, err)
	assert.True(t, inv.DailyReturn.Equals(cop(t, "17200")), "double the minimum doubles the daily return")
}

func TestPurchase_BelowPlanMinimum(t *testing.T) {
	f := newFixture(t, config.Investment{})
	f.fund(t, "200000")

	// Above the country floor but below the basico plan minimum.
	_, err := f.investment.Purchase(context.Background(), f.account.ID, "basico", cop(t, "60000"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPurchase_InsufficientBalance(t *testing.T) {
	f := newFixture(t, config.Investment{})
	f.fund(t, "40000")

	_, err := f.investment.Purchase(context.Background(), f.account.ID, "starter", cop(t, "50000"))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.True(t, f.balance(t).Equals(cop(t, "40000")))
}

func TestPurchase_UnknownPlan(t *testing.T) {
	f := newFixture(t, config.Investment{})
	_, err := f.investment.Purchase(context.Background(), f.account.ID, "moonshot", cop(t, "50000"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccrueDailyReturns(t *testing.T) {
	f := newFixture(t, config.Investment{})
	f.fund(t, "50000")
	ctx := context.Background()

	inv, err := f.investment.Purchase(ctx, f.account.ID, "starter", cop(t, "50000"))
	require.NoError(t, err)
	require.True(t, f.balance(t).IsZero())

	day3 := inv.StartAt.AddDate(0, 0, 3)
	credited, err := f.investment.AccrueDailyReturns(ctx, day3)
	require.NoError(t, err)
	assert.Equal(t, 3, credited)
	assert.True(t, f.balance(t).Equals(cop(t, "25800")), "three daily returns of 8600")

	// Idempotent at the same instant.
	credited, err = f.investment.AccrueDailyReturns(ctx, day3)
	require.NoError(t, err)
	assert.Equal(t, 0, credited)
	assert.True(t, f.balance(t).Equals(cop(t, "25800")))

	// Catching up after a gap credits one entry per missed day.
	credited, err = f.investment.AccrueDailyReturns(ctx, inv.StartAt.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 4, credited)

	list, err := f.ledger.Transactions(ctx, f.account.ID)
	require.NoError(t, err)
	var returns []*domain.Transaction
	for _, tx := range list {
		if tx.Kind == domain.TxDailyReturn {
			returns = append(returns, tx)
		}
	}
	require.Len(t, returns, 7)
	for i, tx := range returns {
		assert.Equal(t, domain.TxApproved, tx.Status)
		assert.Equal(t, inv.ID, tx.InvestmentID)
		wantAt := inv.StartAt.Add(time.Duration(i+1) * 24 * time.Hour)
		assert.True(t, tx.CreatedAt.Equal(wantAt), "credit %d should be dated at its day boundary", i+1)
	}
}

func TestAccrue_CapsAtDuration(t *testing.T) {
	f := newFixture(t, config.Investment{})
	f.fund(t, "50000")
	ctx := context.Background()

	inv, err := f.investment.Purchase(ctx, f.account.ID, "starter", cop(t, "50000"))
	require.NoError(t, err)

	// Far past maturity: exactly DurationDays credits, never more.
	credited, err := f.investment.AccrueDailyReturns(ctx, inv.StartAt.AddDate(0, 0, 365))
	require.NoError(t, err)
	assert.Equal(t, 30, credited)

	credited, err = f.investment.AccrueDailyReturns(ctx, inv.StartAt.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, credited)

	assert.True(t, f.balance(t).Equals(cop(t, "258000")), "total return of the starter plan")
}

func TestCloseMatured_PrincipalKept(t *testing.T) {
	f := newFixture(t, config.Investment{ReturnPrincipal: false})
	f.fund(t, "50000")
	ctx := context.Background()

	inv, err := f.investment.Purchase(ctx, f.account.ID, "starter", cop(t, "50000"))
	require.NoError(t, err)

	after := inv.EndAt.Add(time.Hour)
	_, err = f.investment.AccrueDailyReturns(ctx, after)
	require.NoError(t, err)

	closed, err := f.investment.CloseMatured(ctx, after)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	got, err := f.investment.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentCompleted, got.Status)

	tx, err := f.ledger.Transaction(ctx, linkedTxID(t, f, inv.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.TxCompleted, tx.Status)

	assert.True(t, f.balance(t).Equals(cop(t, "258000")), "returns only, principal stays out")

	replayed, err := f.ledger.ReplayBalance(ctx, f.account.ID, domain.EffectPolicy{PrincipalReturned: false})
	require.NoError(t, err)
	assert.True(t, replayed.Equals(f.balance(t)))
}

func TestCloseMatured_PrincipalReturned(t *testing.T) {
	f := newFixture(t, config.Investment{ReturnPrincipal: true})
	f.fund(t, "50000")
	ctx := context.Background()

	inv, err := f.investment.Purchase(ctx, f.account.ID, "starter", cop(t, "50000"))
	require.NoError(t, err)

	after := inv.EndAt.Add(time.Hour)
	_, err = f.investment.AccrueDailyReturns(ctx, after)
	require.NoError(t, err)

	closed, err := f.investment.CloseMatured(ctx, after)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	assert.True(t, f.balance(t).Equals(cop(t, "308000")), "returns plus the principal")

	replayed, err := f.ledger.ReplayBalance(ctx, f.account.ID, domain.EffectPolicy{PrincipalReturned: true})
	require.NoError(t, err)
	assert.True(t, replayed.Equals(f.balance(t)))
}

func TestCloseMatured_SkipsRunningInvestments(t *testing.T) {
	f := newFixture(t, config.Investment{})
	f.fund(t, "50000")
	ctx := context.Background()

	inv, err := f.investment.Purchase(ctx, f.account.ID, "starter", cop(t, "50000"))
	require.NoError(t, err)

	closed, err := f.investment.CloseMatured(ctx, inv.StartAt.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	got, err := f.investment.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentActive, got.Status)
}

func linkedTxID(t *testing.T, f *fixture, investmentID uuid.UUID) uuid.UUID {
	t.Helper()
	list, err := f.ledger.Transactions(context.Background(), f.account.ID)
	require.NoError(t, err)
	for _, tx := range list {
		if tx.Kind == domain.TxInvestment && tx.InvestmentID == investmentID {
			return tx.ID
		}
	}
	t.Fatalf("no investment transaction for %s", investmentID)
	return uuid.Nil
}
