package webapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/plan"
)

// PlanRoutes registers the plan catalog endpoints.
//
// Routes:
//   - GET /plans        : List plans for a country, sorted.
//   - GET /plans/:id    : Read one plan.
func PlanRoutes(app *fiber.App, svc Services) {
	app.Get("/plans", ListPlans(svc))
	app.Get("/plans/:id", GetPlan(svc))
}

// PlanDTO is the API representation of a plan for one country.
type PlanDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Icon           string   `json:"icon,omitempty"`
	DurationDays   int      `json:"duration_days"`
	MinInvestment  string   `json:"min_investment"`
	MinDisplay     string   `json:"min_investment_display"`
	DailyReturn    string   `json:"daily_return"`
	TotalReturn    string   `json:"total_return"`
	Percentage     string   `json:"percentage"`
	Features       []string `json:"features,omitempty"`
}

func toPlanDTO(p plan.Plan, country currency.Country) (*PlanDTO, error) {
	terms, err := p.TermsFor(country)
	if err != nil {
		return nil, err
	}
	return &PlanDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Icon:          p.Icon,
		DurationDays:  p.DurationDays,
		MinInvestment: terms.MinInvestment.String(),
		MinDisplay:    currency.Format(terms.MinInvestment, country),
		DailyReturn:   terms.DailyReturn.String(),
		TotalReturn:   terms.TotalReturn.String(),
		Percentage:    terms.Percentage.String(),
		Features:      p.Features,
	}, nil
}

// ListPlans handles GET /plans?country=CO&sort=min|duration|percentage.
func ListPlans(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		country := currency.Country(c.Query("country", string(currency.CountryColombia)))
		if !currency.IsSupportedCountry(country) {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed",
				"unsupported country "+string(country))
		}
		key := plan.SortByMinInvestment
		switch c.Query("sort", "min") {
		case "min":
		case "duration":
			key = plan.SortByDuration
		case "percentage":
			key = plan.SortByPercentage
		default:
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", "unknown sort key")
		}

		var out []*PlanDTO
		for _, p := range svc.Investment.Catalog().List(country, key) {
			dto, err := toPlanDTO(p, country)
			if err != nil {
				continue
			}
			out = append(out, dto)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Plans", out)
	}
}

// GetPlan handles GET /plans/:id?country=CO.
func GetPlan(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		country := currency.Country(c.Query("country", string(currency.CountryColombia)))
		if !currency.IsSupportedCountry(country) {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed",
				"unsupported country "+string(country))
		}
		p, err := svc.Investment.Catalog().Get(c.Params("id"))
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		dto, err := toPlanDTO(p, country)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Plan", dto)
	}
}
