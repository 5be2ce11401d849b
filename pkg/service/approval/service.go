// Package approval tracks a pending transaction through its external review:
// a polling watch that maps ledger statuses onto the coarser display states
// shown while a deposit or withdrawal waits for a verdict, plus the
// proof-of-payment submission window for deposits.
package approval

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-ict/ledger/pkg/config"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/repository"
)

// State is the review state presented to the requester. It is derived from
// the transaction status and the watch clock; it is never persisted.
type State string

const (
	// StateSubmitted means the request exists but the watch has not yet
	// observed it.
	StateSubmitted State = "submitted"
	// StateReviewing means the watch is polling and the transaction is
	// still pending.
	StateReviewing State = "reviewing"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
	// StateTimedOut means the watch gave up waiting. The transaction
	// itself stays pending and can still be resolved later.
	StateTimedOut State = "timed_out"
)

// Terminal reports whether the watch stops at this state.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateRejected || s == StateTimedOut
}

// Update is one observation emitted by Watch.
type Update struct {
	TxID    uuid.UUID
	State   State
	Status  domain.TxStatus
	Elapsed time.Duration
}

// Service polls the ledger for resolution of pending transactions.
type Service struct {
	uow    repository.UnitOfWork
	cfg    config.Approval
	logger *slog.Logger
}

// New creates an approval service.
func New(uow repository.UnitOfWork, cfg config.Approval, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger}
}

// Check reads the transaction once and maps its status to a display state.
func (s *Service) Check(ctx context.Context, txID uuid.UUID) (State, error) {
	var status domain.TxStatus
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.Transactions()
		if err != nil {
			return err
		}
		t, err := txs.Get(ctx, txID)
		if err != nil {
			return err
		}
		status = t.Status
		return nil
	})
	if err != nil {
		return "", err
	}
	return stateFor(status), nil
}

func stateFor(status domain.TxStatus) State {
	switch status {
	case domain.TxApproved:
		return StateApproved
	case domain.TxRejected, domain.TxCancelled:
		return StateRejected
	default:
		return StateReviewing
	}
}

// Watch polls the transaction at the configured interval until it leaves
// pending, the wait timeout elapses, or ctx is cancelled. Updates are sent
// on the returned channel, which is closed after the first terminal state.
// A timeout emits StateTimedOut and leaves the transaction untouched.
func (s *Service) Watch(ctx context.Context, txID uuid.UUID) <-chan Update {
	ch := make(chan Update, 1)
	go func() {
		defer close(ch)

		started := time.Now()
		deadline := started.Add(s.cfg.WaitTimeout)
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()

		emit := func(state State, status domain.TxStatus) bool {
			select {
			case ch <- Update{TxID: txID, State: state, Status: status, Elapsed: time.Since(started)}:
			case <-ctx.Done():
				return false
			}
			return !state.Terminal()
		}

		if !emit(StateSubmitted, domain.TxPending) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				state, err := s.Check(ctx, txID)
				if err != nil {
					s.logger.Error("approval poll failed", "tx_id", txID, "error", err)
					continue
				}
				if state == StateReviewing && !now.Before(deadline) {
					s.logger.Warn("approval wait timed out", "tx_id", txID, "waited", time.Since(started))
					emit(StateTimedOut, domain.TxPending)
					return
				}
				var status domain.TxStatus
				switch state {
				case StateApproved:
					status = domain.TxApproved
				case StateRejected:
					status = domain.TxRejected
				default:
					status = domain.TxPending
				}
				if !emit(state, status) {
					return
				}
			}
		}
	}()
	return ch
}

// ProofDeadline returns the instant by which a deposit's proof of payment
// must be attached.
func (s *Service) ProofDeadline(t *domain.Transaction) time.Time {
	return t.CreatedAt.Add(s.cfg.ProofWindow)
}

// ProofExpired reports whether the proof window for a pending deposit has
// closed. Expiry blocks proof submission only; the transaction still awaits
// an explicit verdict.
func (s *Service) ProofExpired(t *domain.Transaction, now time.Time) bool {
	return now.After(s.ProofDeadline(t))
}
