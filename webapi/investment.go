package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/moneta-ict/ledger/pkg/domain"
)

// InvestmentRoutes registers the investment lifecycle endpoints. Accrual and
// maturity runs are exposed as operator triggers; the server also runs them
// on a schedule.
//
// Routes:
//   - POST /accounts/:id/investments  : Purchase a plan.
//   - GET  /accounts/:id/investments  : List the account's investments.
//   - GET  /investments/:id           : Read one investment.
//   - POST /investments/accrue        : Credit due daily returns.
//   - POST /investments/close-matured : Complete matured investments.
func InvestmentRoutes(app *fiber.App, svc Services) {
	app.Post("/accounts/:id/investments", PurchaseInvestment(svc))
	app.Get("/accounts/:id/investments", ListInvestments(svc))
	app.Get("/investments/:id", GetInvestment(svc))
	app.Post("/investments/accrue", AccrueReturns(svc))
	app.Post("/investments/close-matured", CloseMatured(svc))
}

// PurchaseRequest is the plan purchase payload.
type PurchaseRequest struct {
	PlanID string `json:"plan_id" validate:"required,max=32"`
	Amount string `json:"amount" validate:"required"`
}

// InvestmentDTO is the API representation of an investment.
type InvestmentDTO struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	PlanID          string `json:"plan_id"`
	Principal       string `json:"principal"`
	DailyReturn     string `json:"daily_return"`
	TotalReturn     string `json:"total_return"`
	Currency        string `json:"currency"`
	DurationDays    int    `json:"duration_days"`
	StartAt         string `json:"start_at"`
	EndAt           string `json:"end_at"`
	ReturnsCredited int    `json:"returns_credited"`
	Status          string `json:"status"`
}

// ToInvestmentDTO maps a domain investment to its API representation.
func ToInvestmentDTO(inv *domain.Investment) *InvestmentDTO {
	return &InvestmentDTO{
		ID:              inv.ID.String(),
		AccountID:       inv.AccountID.String(),
		PlanID:          inv.PlanID,
		Principal:       inv.Principal.Amount().String(),
		DailyReturn:     inv.DailyReturn.Amount().String(),
		TotalReturn:     inv.TotalReturn().Amount().String(),
		Currency:        string(inv.Principal.Currency()),
		DurationDays:    inv.DurationDays,
		StartAt:         inv.StartAt.Format("2006-01-02T15:04:05Z07:00"),
		EndAt:           inv.EndAt.Format("2006-01-02T15:04:05Z07:00"),
		ReturnsCredited: inv.ReturnsCredited,
		Status:          string(inv.Status),
	}
}

// PurchaseInvestment handles POST /accounts/:id/investments.
func PurchaseInvestment(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[PurchaseRequest](c)
		if err != nil {
			return nil
		}
		amount, err := parseAmount(c, svc, accountID, input.Amount)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		inv, err := svc.Investment.Purchase(c.Context(), accountID, input.PlanID, amount)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Investment opened", ToInvestmentDTO(inv))
	}
}

// ListInvestments handles GET /accounts/:id/investments.
func ListInvestments(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		list, err := svc.Investment.ListByAccount(c.Context(), accountID)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		out := make([]*InvestmentDTO, len(list))
		for i, inv := range list {
			out[i] = ToInvestmentDTO(inv)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Investments", out)
	}
}

// GetInvestment handles GET /investments/:id.
func GetInvestment(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ParseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		inv, err := svc.Investment.Get(c.Context(), id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Investment", ToInvestmentDTO(inv))
	}
}

// AccrueReturns handles POST /investments/accrue.
func AccrueReturns(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		credited, err := svc.Investment.AccrueDailyReturns(c.Context(), time.Now())
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Accrual complete", fiber.Map{
			"credits": credited,
		})
	}
}

// CloseMatured handles POST /investments/close-matured.
func CloseMatured(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		closed, err := svc.Investment.CloseMatured(c.Context(), time.Now())
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Maturity run complete", fiber.Map{
			"closed": closed,
		})
	}
}
