package webapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/moneta-ict/ledger/pkg/service/ledger"
)

// AccountRoutes registers account registration and read endpoints.
//
// Routes:
//   - POST /accounts                    : Register a new account.
//   - GET  /accounts/:id                : Read one account.
//   - GET  /accounts/:id/snapshot       : Dashboard snapshot.
//   - GET  /accounts/:id/transactions   : Full ledger, oldest first.
func AccountRoutes(app *fiber.App, svc Services) {
	app.Post("/accounts", RegisterAccount(svc))
	app.Get("/accounts/:id", GetAccount(svc))
	app.Get("/accounts/:id/snapshot", GetSnapshot(svc))
	app.Get("/accounts/:id/transactions", ListTransactions(svc))
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Country    string `json:"country" validate:"required,len=2,uppercase"`
	ReferredBy string `json:"referred_by" validate:"omitempty,len=6,alphanum"`
}

// AccountDTO is the API representation of an account.
type AccountDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Country      string `json:"country"`
	Currency     string `json:"currency"`
	Balance      string `json:"balance"`
	Display      string `json:"balance_display"`
	Status       string `json:"status"`
	ReferralCode string `json:"referral_code"`
	ReferredBy   string `json:"referred_by,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ToAccountDTO maps a domain account to its API representation.
func ToAccountDTO(a *domain.Account) *AccountDTO {
	return &AccountDTO{
		ID:           a.ID.String(),
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		Country:      string(a.Country),
		Currency:     string(a.Currency()),
		Balance:      a.Balance.Amount().String(),
		Display:      currency.Format(a.Balance.Amount(), a.Country),
		Status:       string(a.Status),
		ReferralCode: a.ReferralCode,
		ReferredBy:   a.ReferredBy,
		CreatedAt:    a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// RegisterAccount handles POST /accounts.
func RegisterAccount(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[RegisterRequest](c)
		if err != nil {
			return nil
		}
		acct, err := svc.Ledger.Register(c.Context(), ledger.RegisterInput{
			Name:       input.Name,
			Email:      input.Email,
			Phone:      input.Phone,
			Country:    currency.Country(input.Country),
			ReferredBy: input.ReferredBy,
		})
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Account registered", ToAccountDTO(acct))
	}
}

// GetAccount handles GET /accounts/:id.
func GetAccount(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		acct, err := svc.Ledger.Account(c.Context(), id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Account", ToAccountDTO(acct))
	}
}

// SnapshotDTO is the dashboard projection of an account.
type SnapshotDTO struct {
	Account            *AccountDTO       `json:"account"`
	ActiveInvestments  int               `json:"active_investments"`
	TotalEarnings      string            `json:"total_earnings"`
	EarningsDisplay    string            `json:"total_earnings_display"`
	RecentTransactions []*TransactionDTO `json:"recent_transactions"`
}

// GetSnapshot handles GET /accounts/:id/snapshot.
func GetSnapshot(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		snap, err := svc.Ledger.Snapshot(c.Context(), id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		dto := SnapshotDTO{
			Account:           ToAccountDTO(snap.Account),
			ActiveInvestments: snap.ActiveInvestments,
			TotalEarnings:     snap.TotalEarnings.Amount().String(),
			EarningsDisplay:   currency.Format(snap.TotalEarnings.Amount(), snap.Account.Country),
		}
		for _, t := range snap.RecentTransactions {
			dto.RecentTransactions = append(dto.RecentTransactions, ToTransactionDTO(t))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Snapshot", dto)
	}
}

// ListTransactions handles GET /accounts/:id/transactions.
func ListTransactions(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		list, err := svc.Ledger.Transactions(c.Context(), id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		out := make([]*TransactionDTO, len(list))
		for i, t := range list {
			out[i] = ToTransactionDTO(t)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transactions", out)
	}
}
