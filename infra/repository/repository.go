package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/money"
	"github.com/moneta-ict/ledger/pkg/repository"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a GORM-backed account repository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var row Account
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return accountFromRow(&row), nil
}

func (r *accountRepository) GetByReferralCode(ctx context.Context, code string) (*domain.Account, error) {
	var row Account
	if err := r.db.WithContext(ctx).First(&row, "referral_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return accountFromRow(&row), nil
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.db.WithContext(ctx).Create(accountToRow(a)).Error
}

// Update writes the account guarded by the optimistic version check: the row
// is updated only where the stored version still matches, and the version is
// bumped. Zero rows affected means a concurrent writer won.
func (r *accountRepository) Update(ctx context.Context, a *domain.Account) error {
	next := a.Version + 1
	result := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ? AND version = ?", a.ID, a.Version).
		Updates(map[string]any{
			"name":       a.Name,
			"phone":      a.Phone,
			"balance":    a.Balance.Amount(),
			"status":     string(a.Status),
			"version":    next,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConcurrencyConflict
	}
	a.Version = next
	return nil
}

func accountToRow(a *domain.Account) *Account {
	return &Account{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		Country:      string(a.Country),
		Currency:     string(a.Currency()),
		Balance:      a.Balance.Amount(),
		Version:      a.Version,
		Role:         string(a.Role),
		Status:       string(a.Status),
		ReferralCode: a.ReferralCode,
		ReferredBy:   a.ReferredBy,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func accountFromRow(row *Account) *domain.Account {
	return &domain.Account{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Phone:        row.Phone,
		Country:      currency.Country(row.Country),
		Balance:      money.FromData(row.Balance, currency.Code(row.Currency)),
		Version:      row.Version,
		Role:         domain.Role(row.Role),
		Status:       domain.AccountStatus(row.Status),
		ReferralCode: row.ReferralCode,
		ReferredBy:   row.ReferredBy,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a GORM-backed transaction repository.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(transactionToRow(t)).Error
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var row Transaction
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return transactionFromRow(&row), nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	var rows []Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Transaction, len(rows))
	for i := range rows {
		out[i] = transactionFromRow(&rows[i])
	}
	return out, nil
}

// Update persists the mutable subset of a ledger entry. Amount, kind and
// account are immutable after creation and are deliberately not written.
func (r *transactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"status":      string(t.Status),
			"resolved_at": t.ResolvedAt,
			"resolved_by": t.ResolvedBy,
			"proof_ref":   t.ProofRef,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *transactionRepository) ListPending(ctx context.Context) ([]*domain.Transaction, error) {
	var rows []Transaction
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.TxPending)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Transaction, len(rows))
	for i := range rows {
		out[i] = transactionFromRow(&rows[i])
	}
	return out, nil
}

func (r *transactionRepository) GetByInvestment(ctx context.Context, investmentID uuid.UUID, kind domain.TxKind) (*domain.Transaction, error) {
	var row Transaction
	err := r.db.WithContext(ctx).
		First(&row, "investment_id = ? AND kind = ?", investmentID, string(kind)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return transactionFromRow(&row), nil
}

func (r *transactionRepository) HasReferralBonusFor(ctx context.Context, referrerID, referredID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("account_id = ? AND referred_id = ? AND kind = ?",
			referrerID, referredID, string(domain.TxReferralBonus)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func transactionToRow(t *domain.Transaction) *Transaction {
	return &Transaction{
		ID:           t.ID,
		AccountID:    t.AccountID,
		Kind:         string(t.Kind),
		Amount:       t.Amount.Amount(),
		Currency:     string(t.Amount.Currency()),
		Status:       string(t.Status),
		ResolvedAt:   t.ResolvedAt,
		ResolvedBy:   t.ResolvedBy,
		ProofRef:     t.ProofRef,
		BankName:     t.Payout.BankName,
		BankAccount:  t.Payout.AccountNumber,
		BankAccType:  t.Payout.AccountType,
		PlanID:       t.PlanID,
		InvestmentID: t.InvestmentID,
		ReferredID:   t.ReferredID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.CreatedAt,
	}
}

func transactionFromRow(row *Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:        row.ID,
		AccountID: row.AccountID,
		Kind:      domain.TxKind(row.Kind),
		Amount:    money.FromData(row.Amount, currency.Code(row.Currency)),
		Status:    domain.TxStatus(row.Status),
		CreatedAt: row.CreatedAt,
		ResolvedAt: row.ResolvedAt,
		ResolvedBy: row.ResolvedBy,
		Payout: domain.PayoutDetails{
			BankName:      row.BankName,
			AccountNumber: row.BankAccount,
			AccountType:   row.BankAccType,
		},
		ProofRef:     row.ProofRef,
		PlanID:       row.PlanID,
		InvestmentID: row.InvestmentID,
		ReferredID:   row.ReferredID,
	}
}

type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates a GORM-backed investment repository.
func NewInvestmentRepository(db *gorm.DB) repository.InvestmentRepository {
	return &investmentRepository{db: db}
}

func (r *investmentRepository) Create(ctx context.Context, inv *domain.Investment) error {
	return r.db.WithContext(ctx).Create(investmentToRow(inv)).Error
}

func (r *investmentRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	var row Investment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return investmentFromRow(&row), nil
}

func (r *investmentRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Investment, error) {
	var rows []Investment
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("start_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Investment, len(rows))
	for i := range rows {
		out[i] = investmentFromRow(&rows[i])
	}
	return out, nil
}

func (r *investmentRepository) ListActive(ctx context.Context) ([]*domain.Investment, error) {
	var rows []Investment
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.InvestmentActive)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Investment, len(rows))
	for i := range rows {
		out[i] = investmentFromRow(&rows[i])
	}
	return out, nil
}

func (r *investmentRepository) Update(ctx context.Context, inv *domain.Investment) error {
	return r.db.WithContext(ctx).
		Model(&Investment{}).
		Where("id = ?", inv.ID).
		Updates(map[string]any{
			"returns_credited": inv.ReturnsCredited,
			"status":           string(inv.Status),
			"updated_at":       time.Now().UTC(),
		}).Error
}

func investmentToRow(inv *domain.Investment) *Investment {
	return &Investment{
		ID:              inv.ID,
		AccountID:       inv.AccountID,
		PlanID:          inv.PlanID,
		Principal:       inv.Principal.Amount(),
		DailyReturn:     inv.DailyReturn.Amount(),
		Currency:        string(inv.Principal.Currency()),
		DurationDays:    inv.DurationDays,
		StartAt:         inv.StartAt,
		EndAt:           inv.EndAt,
		ReturnsCredited: inv.ReturnsCredited,
		Status:          string(inv.Status),
		CreatedAt:       inv.StartAt,
	}
}

func investmentFromRow(row *Investment) *domain.Investment {
	code := currency.Code(row.Currency)
	return &domain.Investment{
		ID:              row.ID,
		AccountID:       row.AccountID,
		PlanID:          row.PlanID,
		Principal:       money.FromData(row.Principal, code),
		DailyReturn:     money.FromData(row.DailyReturn, code),
		DurationDays:    row.DurationDays,
		StartAt:         row.StartAt,
		EndAt:           row.EndAt,
		ReturnsCredited: row.ReturnsCredited,
		Status:          domain.InvestmentStatus(row.Status),
	}
}
