package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/money"
)

// Role distinguishes regular users from back-office operators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AccountStatus is the account lifecycle flag. Accounts are never deleted,
// only soft-deactivated.
type AccountStatus string

const (
	AccountActive      AccountStatus = "active"
	AccountDeactivated AccountStatus = "deactivated"
)

// Account is the aggregate the ledger mutates. Balance is a cached
// projection: the source of truth is the sum of transaction effects, and the
// cached value must stay replay-consistent.
//
// Invariants:
//   - Balance never goes negative as a result of a withdrawal or investment debit.
//   - Balance is only mutated through ledger commands, serialized per account.
//   - ReferralCode is unique; ReferredBy is a weak reference by code.
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	Country      currency.Country
	Balance      money.Money
	Version      int64
	Role         Role
	Status       AccountStatus
	ReferralCode string
	ReferredBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Builder constructs Account instances, validating invariants on Build.
type Builder struct {
	id           uuid.UUID
	name         string
	email        string
	phone        string
	country      currency.Country
	balance      *money.Money
	version      int64
	role         Role
	status       AccountStatus
	referralCode string
	referredBy   string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewAccount starts a Builder with sensible defaults.
func NewAccount() *Builder {
	return &Builder{
		id:        uuid.New(),
		role:      RoleUser,
		status:    AccountActive,
		createdAt: time.Now(),
	}
}

// WithID sets the account ID (hydration and tests).
func (b *Builder) WithID(id uuid.UUID) *Builder { b.id = id; return b }

// WithName sets the display name. Mandatory.
func (b *Builder) WithName(name string) *Builder { b.name = name; return b }

// WithEmail sets the email. Mandatory.
func (b *Builder) WithEmail(email string) *Builder { b.email = email; return b }

// WithPhone sets the phone number.
func (b *Builder) WithPhone(phone string) *Builder { b.phone = phone; return b }

// WithCountry sets the country, which determines the account currency. Mandatory.
func (b *Builder) WithCountry(country currency.Country) *Builder { b.country = country; return b }

// WithRole sets the role. Defaults to RoleUser.
func (b *Builder) WithRole(role Role) *Builder { b.role = role; return b }

// WithStatus sets the lifecycle status (hydration).
func (b *Builder) WithStatus(status AccountStatus) *Builder { b.status = status; return b }

// WithBalance sets the cached balance (hydration and tests only; new accounts
// always start at zero).
func (b *Builder) WithBalance(balance money.Money) *Builder { b.balance = &balance; return b }

// WithVersion sets the optimistic-concurrency version (hydration).
func (b *Builder) WithVersion(v int64) *Builder { b.version = v; return b }

// WithReferralCode sets the referral code (hydration; generated otherwise).
func (b *Builder) WithReferralCode(code string) *Builder { b.referralCode = code; return b }

// WithReferredBy records the referrer's code. Optional.
func (b *Builder) WithReferredBy(code string) *Builder { b.referredBy = code; return b }

// WithCreatedAt sets the creation timestamp (hydration).
func (b *Builder) WithCreatedAt(t time.Time) *Builder { b.createdAt = t; return b }

// WithUpdatedAt sets the last-updated timestamp (hydration).
func (b *Builder) WithUpdatedAt(t time.Time) *Builder { b.updatedAt = t; return b }

// Build validates invariants and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.name == "" {
		return nil, errors.New("name is required")
	}
	if b.email == "" {
		return nil, errors.New("email is required")
	}
	if !currency.IsSupportedCountry(b.country) {
		return nil, currency.ErrUnsupportedCountry
	}
	code, err := currency.ForCountry(b.country)
	if err != nil {
		return nil, err
	}
	balance := money.Zero(code)
	if b.balance != nil {
		if b.balance.Currency() != code {
			return nil, money.ErrCurrencyMismatch
		}
		balance = *b.balance
	}
	referralCode := b.referralCode
	if referralCode == "" {
		referralCode, err = NewReferralCode()
		if err != nil {
			return nil, err
		}
	}
	return &Account{
		ID:           b.id,
		Name:         b.name,
		Email:        b.email,
		Phone:        b.phone,
		Country:      b.country,
		Balance:      balance,
		Version:      b.version,
		Role:         b.role,
		Status:       b.status,
		ReferralCode: referralCode,
		ReferredBy:   b.referredBy,
		CreatedAt:    b.createdAt,
		UpdatedAt:    b.updatedAt,
	}, nil
}

// Currency returns the account's currency code.
func (a *Account) Currency() currency.Code { return a.Balance.Currency() }

// ValidateDebit checks that amount can be taken from the balance without
// going negative. Returns ErrInsufficientBalance otherwise.
func (a *Account) ValidateDebit(amount money.Money) error {
	if !amount.IsPositive() {
		return money.ErrAmountNotPositive
	}
	enough, err := a.Balance.GreaterThan(amount)
	if err != nil {
		return err
	}
	if !enough && !a.Balance.Equals(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// Credit adds amount to the cached balance.
func (a *Account) Credit(amount money.Money) error {
	next, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = next
	return nil
}

// Debit removes amount from the cached balance after ValidateDebit.
func (a *Account) Debit(amount money.Money) error {
	if err := a.ValidateDebit(amount); err != nil {
		return err
	}
	next, err := a.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	a.Balance = next
	return nil
}

// Deactivate soft-deletes the account.
func (a *Account) Deactivate() { a.Status = AccountDeactivated }

const referralCodeLen = 6

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReferralCode generates a 6-character alphanumeric referral code.
func NewReferralCode() (string, error) {
	code := make([]byte, referralCodeLen)
	max := big.NewInt(int64(len(referralAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = referralAlphabet[n.Int64()]
	}
	return string(code), nil
}
