// Package money provides the Money value object used by the ledger. Amounts
// are exact decimals; repeated accrual over a full plan term must not drift,
// so no float64 arithmetic is allowed anywhere downstream of this package.
package money

import (
	"errors"
	"fmt"

	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when an amount cannot be parsed as a decimal.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidDecimals is returned when an amount has more decimal places
	// than its currency allows.
	ErrInvalidDecimals = errors.New("amount has more decimal places than allowed by the currency")
	// ErrCurrencyMismatch is returned by arithmetic on mixed currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrAmountNotPositive is returned when a transaction amount is zero or negative.
	ErrAmountNotPositive = errors.New("amount must be positive")
	// ErrBelowMinimum is returned when an amount is under the country minimum
	// for its kind.
	ErrBelowMinimum = errors.New("amount below minimum")
)

// Money is an immutable monetary value in a specific currency.
//
// Invariants:
//   - The currency code is registered in the currency registry.
//   - The amount never carries more decimal places than the currency allows.
//   - All arithmetic requires matching currencies.
type Money struct {
	amount   decimal.Decimal
	currency currency.Code
}

// New creates a Money value, enforcing currency support and decimal places.
func New(amount decimal.Decimal, code currency.Code) (Money, error) {
	meta, err := currency.Get(code)
	if err != nil {
		return Money{}, err
	}
	if !amount.Equal(amount.Truncate(int32(meta.Decimals))) {
		return Money{}, ErrInvalidDecimals
	}
	return Money{amount: amount, currency: code}, nil
}

// Parse builds a Money value from raw user input, rejecting non-numeric text.
func Parse(raw string, code currency.Code) (Money, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return New(d, code)
}

// Zero returns the zero value in the given currency.
func Zero(code currency.Code) Money {
	return Money{amount: decimal.Zero, currency: code}
}

// FromData rehydrates a Money value from storage without re-validating.
// Use only in repositories and test fixtures.
func FromData(amount decimal.Decimal, code currency.Code) Money {
	return Money{amount: amount, currency: code}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() currency.Code { return m.currency }

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool { return m.currency == other.currency }

// Add returns m + other, failing on currency mismatch.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other, failing on currency mismatch.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MulInt returns m scaled by an integer factor. Exact for any factor.
func (m Money) MulInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor)), currency: m.currency}
}

// Negate returns -m.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Equals reports exact equality of amount and currency.
func (m Money) Equals(other Money) bool {
	return m.SameCurrency(other) && m.amount.Equal(other.amount)
}

// GreaterThan reports m > other, failing on currency mismatch.
func (m Money) GreaterThan(other Money) (bool, error) {
	if !m.SameCurrency(other) {
		return false, ErrCurrencyMismatch
	}
	return m.amount.GreaterThan(other.amount), nil
}

// LessThan reports m < other, failing on currency mismatch.
func (m Money) LessThan(other Money) (bool, error) {
	if !m.SameCurrency(other) {
		return false, ErrCurrencyMismatch
	}
	return m.amount.LessThan(other.amount), nil
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// String renders the amount with the currency's decimal places and code.
func (m Money) String() string {
	meta, err := currency.Get(m.currency)
	if err != nil {
		return m.amount.String() + " " + string(m.currency)
	}
	return m.amount.StringFixed(int32(meta.Decimals)) + " " + string(m.currency)
}

// Validate checks an amount for a command of the given kind in the given
// country: the amount must be positive, in the country's currency, and at or
// above the kind-specific minimum.
func Validate(m Money, kind currency.AmountKind, country currency.Country) error {
	code, err := currency.ForCountry(country)
	if err != nil {
		return err
	}
	if m.Currency() != code {
		return ErrCurrencyMismatch
	}
	if !m.IsPositive() {
		return ErrAmountNotPositive
	}
	limits, err := currency.LimitsFor(country)
	if err != nil {
		return err
	}
	if m.Amount().LessThan(limits.Min(kind)) {
		return fmt.Errorf("%w: %s requires at least %s", ErrBelowMinimum, kind,
			currency.Format(limits.Min(kind), country))
	}
	return nil
}
