package webapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/money"
	"github.com/moneta-ict/ledger/pkg/service/ledger"
)

// TransactionRoutes registers the money-movement endpoints and the
// resolution hook used by the external review channel.
//
// Routes:
//   - POST /accounts/:id/deposits     : Request a deposit (pending).
//   - POST /accounts/:id/withdrawals  : Request a withdrawal (debits now).
//   - POST /transactions/:id/proof    : Attach deposit proof reference.
//   - POST /transactions/:id/cancel   : Cancel a pending withdrawal.
//   - POST /transactions/:id/resolve  : Apply the reviewer's verdict.
//   - GET  /transactions/:id/status   : Poll the review state.
//   - GET  /transactions/pending      : Reviewer work queue.
func TransactionRoutes(app *fiber.App, svc Services) {
	app.Get("/transactions/pending", ListPendingTransactions(svc))
	app.Post("/accounts/:id/deposits", RequestDeposit(svc))
	app.Post("/accounts/:id/withdrawals", RequestWithdrawal(svc))
	app.Post("/transactions/:id/proof", AttachProof(svc))
	app.Post("/transactions/:id/cancel", CancelWithdrawal(svc))
	app.Post("/transactions/:id/resolve", ResolveTransaction(svc))
	app.Get("/transactions/:id/status", TransactionStatus(svc))
}

// TransactionDTO is the API representation of a ledger entry.
type TransactionDTO struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Kind         string `json:"kind"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	ProofRef     string `json:"proof_ref,omitempty"`
	PlanID       string `json:"plan_id,omitempty"`
	InvestmentID string `json:"investment_id,omitempty"`
	ResolvedBy   string `json:"resolved_by,omitempty"`
	ResolvedAt   string `json:"resolved_at,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ToTransactionDTO maps a domain transaction to its API representation.
func ToTransactionDTO(t *domain.Transaction) *TransactionDTO {
	dto := &TransactionDTO{
		ID:         t.ID.String(),
		AccountID:  t.AccountID.String(),
		Kind:       string(t.Kind),
		Amount:     t.Amount.Amount().String(),
		Currency:   string(t.Amount.Currency()),
		Status:     string(t.Status),
		ProofRef:   t.ProofRef,
		PlanID:     t.PlanID,
		ResolvedBy: t.ResolvedBy,
		CreatedAt:  t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.InvestmentID != uuid.Nil {
		dto.InvestmentID = t.InvestmentID.String()
	}
	if t.ResolvedAt != nil {
		dto.ResolvedAt = t.ResolvedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return dto
}

// DepositRequest is the deposit payload. Amount is a decimal string so no
// precision is lost in transit.
type DepositRequest struct {
	Amount   string `json:"amount" validate:"required"`
	ProofRef string `json:"proof_ref" validate:"omitempty,max=512"`
}

// RequestDeposit handles POST /accounts/:id/deposits.
func RequestDeposit(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[DepositRequest](c)
		if err != nil {
			return nil
		}
		amount, err := parseAmount(c, svc, accountID, input.Amount)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		txID, err := svc.Ledger.RequestDeposit(c.Context(), accountID, amount, input.ProofRef)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Deposit requested", fiber.Map{
			"transaction_id": txID.String(),
			"status":         string(domain.TxPending),
		})
	}
}

// WithdrawalRequest is the withdrawal payload.
type WithdrawalRequest struct {
	Amount        string `json:"amount" validate:"required"`
	BankName      string `json:"bank_name" validate:"required,max=255"`
	AccountNumber string `json:"account_number" validate:"required,max=64"`
	AccountType   string `json:"account_type" validate:"omitempty,max=32"`
}

// RequestWithdrawal handles POST /accounts/:id/withdrawals.
func RequestWithdrawal(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[WithdrawalRequest](c)
		if err != nil {
			return nil
		}
		amount, err := parseAmount(c, svc, accountID, input.Amount)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		txID, err := svc.Ledger.RequestWithdrawal(c.Context(), accountID, amount, domain.PayoutDetails{
			BankName:      input.BankName,
			AccountNumber: input.AccountNumber,
			AccountType:   input.AccountType,
		})
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Withdrawal requested", fiber.Map{
			"transaction_id": txID.String(),
			"status":         string(domain.TxPending),
		})
	}
}

// ProofRequest attaches the proof-of-payment reference to a deposit.
type ProofRequest struct {
	ProofRef string `json:"proof_ref" validate:"required,max=512"`
}

// AttachProof handles POST /transactions/:id/proof. Submissions after the
// proof window closes are refused.
func AttachProof(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txID, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[ProofRequest](c)
		if err != nil {
			return nil
		}
		t, err := svc.Ledger.Transaction(c.Context(), txID)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		if svc.Approval.ProofExpired(t, time.Now()) {
			return ErrorResponseJSON(c, fiber.StatusGone, "Proof window closed",
				"the submission window for this deposit has expired")
		}
		if err := svc.Ledger.AttachDepositProof(c.Context(), txID, input.ProofRef); err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Proof attached", nil)
	}
}

// CancelRequest identifies who is cancelling.
type CancelRequest struct {
	RequestedBy string `json:"requested_by" validate:"required,max=255"`
}

// CancelWithdrawal handles POST /transactions/:id/cancel.
func CancelWithdrawal(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txID, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[CancelRequest](c)
		if err != nil {
			return nil
		}
		if err := svc.Ledger.CancelWithdrawal(c.Context(), txID, input.RequestedBy); err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal cancelled", nil)
	}
}

// ResolveRequest is the reviewer's verdict.
type ResolveRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Resolver string `json:"resolver" validate:"required,max=255"`
}

// ResolveTransaction handles POST /transactions/:id/resolve. This is the
// hook the external review channel calls with its verdict.
func ResolveTransaction(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txID, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[ResolveRequest](c)
		if err != nil {
			return nil
		}
		err = svc.Ledger.Resolve(c.Context(), txID, ledger.Decision(input.Decision), input.Resolver)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transaction resolved", nil)
	}
}

// ListPendingTransactions handles GET /transactions/pending, the queue the
// external review channel polls for work.
func ListPendingTransactions(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.Ledger.PendingTransactions(c.Context())
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		out := make([]*TransactionDTO, len(list))
		for i, t := range list {
			out[i] = ToTransactionDTO(t)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Pending transactions", out)
	}
}

// TransactionStatus handles GET /transactions/:id/status, the polling
// endpoint clients hit while a request is under review.
func TransactionStatus(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txID, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		state, err := svc.Approval.Check(c.Context(), txID)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Status", fiber.Map{
			"state": string(state),
		})
	}
}

// parseAmount turns a decimal string into money in the account's currency.
func parseAmount(c *fiber.Ctx, svc Services, accountID uuid.UUID, raw string) (money.Money, error) {
	acct, err := svc.Ledger.Account(c.Context(), accountID)
	if err != nil {
		return money.Money{}, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return money.Money{}, fmt.Errorf("%w: amount is not a valid decimal", domain.ErrValidation)
	}
	m, err := money.New(d, acct.Currency())
	if err != nil {
		return money.Money{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return m, nil
}
