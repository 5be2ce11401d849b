// Package memory is an in-memory implementation of the repository
// contracts. It backs handler and service tests and makes the server
// runnable without a database. A single store-wide mutex stands in for the
// database transaction; Do is serialized, so commands observe the same
// isolation the GORM unit of work gives them.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/repository"
)

type store struct {
	mu          sync.Mutex
	accounts    map[uuid.UUID]domain.Account
	txs         map[uuid.UUID]domain.Transaction
	txOrder     []uuid.UUID
	investments map[uuid.UUID]domain.Investment
}

// UoW is an in-memory unit of work.
type UoW struct {
	s *store
}

// NewUoW creates an empty in-memory store.
func NewUoW() *UoW {
	return &UoW{s: &store{
		accounts:    make(map[uuid.UUID]domain.Account),
		txs:         make(map[uuid.UUID]domain.Transaction),
		investments: make(map[uuid.UUID]domain.Investment),
	}}
}

// Do serializes fn under the store mutex. There is no rollback: a failed fn
// may leave partial writes behind, which the tests that need atomicity do
// not rely on.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return fn(&boundUoW{s: u.s})
}

func (u *UoW) Accounts() (repository.AccountRepository, error) {
	return &accountRepo{s: u.s}, nil
}

func (u *UoW) Transactions() (repository.TransactionRepository, error) {
	return &transactionRepo{s: u.s}, nil
}

func (u *UoW) Investments() (repository.InvestmentRepository, error) {
	return &investmentRepo{s: u.s}, nil
}

// boundUoW is the view handed to fn inside Do. It shares the store but must
// not re-lock it.
type boundUoW struct {
	s *store
}

func (u *boundUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(u)
}

func (u *boundUoW) Accounts() (repository.AccountRepository, error) {
	return &accountRepo{s: u.s}, nil
}

func (u *boundUoW) Transactions() (repository.TransactionRepository, error) {
	return &transactionRepo{s: u.s}, nil
}

func (u *boundUoW) Investments() (repository.InvestmentRepository, error) {
	return &investmentRepo{s: u.s}, nil
}

type accountRepo struct {
	s *store
}

func (r *accountRepo) Get(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := a
	return &copy, nil
}

func (r *accountRepo) GetByReferralCode(_ context.Context, code string) (*domain.Account, error) {
	for _, a := range r.s.accounts {
		if a.ReferralCode == code {
			copy := a
			return &copy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *accountRepo) Create(_ context.Context, a *domain.Account) error {
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *accountRepo) Update(_ context.Context, a *domain.Account) error {
	stored, ok := r.s.accounts[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != a.Version {
		return domain.ErrConcurrencyConflict
	}
	a.Version++
	r.s.accounts[a.ID] = *a
	return nil
}

type transactionRepo struct {
	s *store
}

func (r *transactionRepo) Create(_ context.Context, t *domain.Transaction) error {
	r.s.txs[t.ID] = *t
	r.s.txOrder = append(r.s.txOrder, t.ID)
	return nil
}

func (r *transactionRepo) Get(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, ok := r.s.txs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := t
	return &copy, nil
}

func (r *transactionRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, id := range r.s.txOrder {
		t := r.s.txs[id]
		if t.AccountID == accountID {
			copy := t
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *transactionRepo) Update(_ context.Context, t *domain.Transaction) error {
	stored, ok := r.s.txs[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = t.Status
	stored.ResolvedAt = t.ResolvedAt
	stored.ResolvedBy = t.ResolvedBy
	stored.ProofRef = t.ProofRef
	r.s.txs[t.ID] = stored
	return nil
}

func (r *transactionRepo) ListPending(_ context.Context) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, id := range r.s.txOrder {
		t := r.s.txs[id]
		if t.Status == domain.TxPending {
			copy := t
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *transactionRepo) GetByInvestment(_ context.Context, investmentID uuid.UUID, kind domain.TxKind) (*domain.Transaction, error) {
	for _, id := range r.s.txOrder {
		t := r.s.txs[id]
		if t.InvestmentID == investmentID && t.Kind == kind {
			copy := t
			return &copy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *transactionRepo) HasReferralBonusFor(_ context.Context, referrerID, referredID uuid.UUID) (bool, error) {
	for _, t := range r.s.txs {
		if t.Kind == domain.TxReferralBonus && t.AccountID == referrerID && t.ReferredID == referredID {
			return true, nil
		}
	}
	return false, nil
}

type investmentRepo struct {
	s *store
}

func (r *investmentRepo) Create(_ context.Context, inv *domain.Investment) error {
	r.s.investments[inv.ID] = *inv
	return nil
}

func (r *investmentRepo) Get(_ context.Context, id uuid.UUID) (*domain.Investment, error) {
	inv, ok := r.s.investments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := inv
	return &copy, nil
}

func (r *investmentRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*domain.Investment, error) {
	var out []*domain.Investment
	for _, inv := range r.s.investments {
		if inv.AccountID == accountID {
			copy := inv
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out, nil
}

func (r *investmentRepo) ListActive(_ context.Context) ([]*domain.Investment, error) {
	var out []*domain.Investment
	for _, inv := range r.s.investments {
		if inv.Status == domain.InvestmentActive {
			copy := inv
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *investmentRepo) Update(_ context.Context, inv *domain.Investment) error {
	stored, ok := r.s.investments[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.ReturnsCredited = inv.ReturnsCredited
	stored.Status = inv.Status
	r.s.investments[inv.ID] = stored
	return nil
}
