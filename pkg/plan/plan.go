// Package plan holds the immutable investment plan catalog. The catalog is
// pure reference data: lookups and ordered listings, no mutable state.
package plan

import (
	"sort"

	"github.com/moneta-ict/ledger/pkg/currency"
	"github.com/moneta-ict/ledger/pkg/domain"
	"github.com/shopspring/decimal"
)

// Terms are the per-country figures of a plan. Minimum investment and daily
// return are defined per currency; total return and yield are derived display
// figures carried for the catalog listing.
type Terms struct {
	MinInvestment decimal.Decimal `json:"min_investment"`
	DailyReturn   decimal.Decimal `json:"daily_return"`
	TotalReturn   decimal.Decimal `json:"total_return"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// Plan is one immutable catalog entry.
type Plan struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Description  string                     `json:"description"`
	Icon         string                     `json:"icon"`
	DurationDays int                        `json:"duration_days"`
	Terms        map[currency.Country]Terms `json:"terms"`
	Features     []string                   `json:"features"`
}

// TermsFor returns the plan terms for a country.
func (p Plan) TermsFor(country currency.Country) (Terms, error) {
	t, ok := p.Terms[country]
	if !ok {
		return Terms{}, currency.ErrUnsupportedCountry
	}
	return t, nil
}

// SortKey selects the ordering of List.
type SortKey string

const (
	// SortByMinInvestment orders by minimum investment, ascending.
	SortByMinInvestment SortKey = "min_investment"
	// SortByDuration orders by duration in days, ascending.
	SortByDuration SortKey = "duration"
	// SortByPercentage orders by yield percentage, descending.
	SortByPercentage SortKey = "percentage"
)

// Catalog is a read-only plan table. Ties in List are broken by catalog
// insertion order (sort stability).
type Catalog struct {
	plans []Plan
	index map[string]int
}

// NewCatalog builds a catalog from the given plans.
func NewCatalog(plans []Plan) *Catalog {
	c := &Catalog{plans: plans, index: make(map[string]int, len(plans))}
	for i, p := range plans {
		c.index[p.ID] = i
	}
	return c
}

// Get returns the plan with the given ID or domain.ErrNotFound.
func (c *Catalog) Get(id string) (Plan, error) {
	i, ok := c.index[id]
	if !ok {
		return Plan{}, domain.ErrNotFound
	}
	return c.plans[i], nil
}

// List returns the plans offering terms in the given country, ordered by the
// sort key. The sort is stable; unknown keys fall back to insertion order.
func (c *Catalog) List(country currency.Country, key SortKey) []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		if _, ok := p.Terms[country]; ok {
			out = append(out, p)
		}
	}
	switch key {
	case SortByMinInvestment:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Terms[country].MinInvestment.LessThan(out[j].Terms[country].MinInvestment)
		})
	case SortByDuration:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DurationDays < out[j].DurationDays
		})
	case SortByPercentage:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Terms[country].Percentage.GreaterThan(out[j].Terms[country].Percentage)
		})
	}
	return out
}

// Len returns the number of plans in the catalog.
func (c *Catalog) Len() int { return len(c.plans) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
