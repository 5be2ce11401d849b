package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/moneta-ict/ledger/pkg/money"
)

// InvestmentStatus is the lifecycle state of an investment.
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentCompleted InvestmentStatus = "completed"
)

// Investment is an active plan purchase accruing one fixed daily return per
// elapsed day until maturity.
//
// Invariants:
//   - DailyReturn is fixed at creation from the plan terms.
//   - Exactly one daily return may be credited per elapsed day, never for a
//     day not yet elapsed, never more than DurationDays in total.
type Investment struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	PlanID          string
	Principal       money.Money
	DailyReturn     money.Money
	DurationDays    int
	StartAt         time.Time
	EndAt           time.Time
	ReturnsCredited int
	Status          InvestmentStatus
}

// NewInvestment creates an active investment starting at startAt.
func NewInvestment(
	accountID uuid.UUID,
	planID string,
	principal, dailyReturn money.Money,
	durationDays int,
	startAt time.Time,
) *Investment {
	return &Investment{
		ID:           uuid.New(),
		AccountID:    accountID,
		PlanID:       planID,
		Principal:    principal,
		DailyReturn:  dailyReturn,
		DurationDays: durationDays,
		StartAt:      startAt,
		EndAt:        startAt.AddDate(0, 0, durationDays),
		Status:       InvestmentActive,
	}
}

// ElapsedDays returns the number of fully elapsed accrual days at now,
// capped at DurationDays so nothing accrues past maturity.
func (inv *Investment) ElapsedDays(now time.Time) int {
	if !now.After(inv.StartAt) {
		return 0
	}
	elapsed := int(now.Sub(inv.StartAt) / (24 * time.Hour))
	if elapsed > inv.DurationDays {
		elapsed = inv.DurationDays
	}
	return elapsed
}

// DueReturns returns how many daily returns are owed but not yet credited at
// now. Idempotent: a second call at the same instant, after crediting, owes
// zero.
func (inv *Investment) DueReturns(now time.Time) int {
	due := inv.ElapsedDays(now) - inv.ReturnsCredited
	if due < 0 {
		return 0
	}
	return due
}

// Matured reports whether the investment has reached its end timestamp.
func (inv *Investment) Matured(now time.Time) bool {
	return !now.Before(inv.EndAt)
}

// TotalReturn is the derived display figure dailyReturn × duration. It is
// never persisted.
func (inv *Investment) TotalReturn() money.Money {
	return inv.DailyReturn.MulInt(int64(inv.DurationDays))
}
