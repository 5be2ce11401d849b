// Package currency holds the per-country currency rules for the platform:
// supported countries, their currency codes, display metadata, and the
// country-specific transaction limits (minimum deposit, minimum withdrawal,
// minimum investment, welcome bonus).
package currency

import (
	"errors"
	"strconv"
	"strings"

	"github.com/moneta-ict/ledger/pkg/registry"
	"github.com/shopspring/decimal"
)

// Code is an ISO 4217 currency code.
type Code string

// Country is an ISO 3166-1 alpha-2 country code.
type Country string

// Supported countries and their currencies.
const (
	CountryColombia Country = "CO"
	CountryPeru     Country = "PE"

	COP Code = "COP"
	PEN Code = "PEN"
)

var (
	// ErrUnsupportedCountry is returned for a country outside the platform's coverage.
	ErrUnsupportedCountry = errors.New("unsupported country")
	// ErrUnsupportedCurrency is returned for a currency code not in the registry.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Meta holds currency display metadata.
type Meta struct {
	Decimals int
	Symbol   string
	// Grouping and decimal separators follow the country's locale
	// (Colombia writes $ 1.234.567, Peru writes S/ 1,234.56).
	GroupSep   string
	DecimalSep string
}

// AmountKind selects which per-country minimum applies to an amount.
type AmountKind string

const (
	KindDeposit    AmountKind = "deposit"
	KindWithdrawal AmountKind = "withdrawal"
	KindInvestment AmountKind = "investment"
)

// Limits are the country-specific transaction limits.
type Limits struct {
	MinDeposit    decimal.Decimal
	MinWithdrawal decimal.Decimal
	MinInvestment decimal.Decimal
	WelcomeBonus  decimal.Decimal
}

// Min returns the minimum amount for the given kind.
func (l Limits) Min(kind AmountKind) decimal.Decimal {
	switch kind {
	case KindWithdrawal:
		return l.MinWithdrawal
	case KindInvestment:
		return l.MinInvestment
	default:
		return l.MinDeposit
	}
}

// Registry wraps the generic registry for currency and country lookups.
type Registry struct {
	currencies *registry.Registry
	countries  *registry.Registry
}

// NewRegistry creates a registry populated with the platform's countries.
func NewRegistry() *Registry {
	r := &Registry{
		currencies: registry.New(),
		countries:  registry.New(),
	}

	r.RegisterCurrency(COP, Meta{Decimals: 0, Symbol: "$", GroupSep: ".", DecimalSep: ","})
	r.RegisterCurrency(PEN, Meta{Decimals: 2, Symbol: "S/", GroupSep: ",", DecimalSep: "."})

	r.RegisterCountry(CountryColombia, "Colombia", COP, Limits{
		MinDeposit:    decimal.NewFromInt(40000),
		MinWithdrawal: decimal.NewFromInt(25000),
		MinInvestment: decimal.NewFromInt(50000),
		WelcomeBonus:  decimal.NewFromInt(12000),
	})
	r.RegisterCountry(CountryPeru, "Perú", PEN, Limits{
		MinDeposit:    decimal.NewFromInt(35),
		MinWithdrawal: decimal.NewFromInt(22),
		MinInvestment: decimal.NewFromInt(45),
		WelcomeBonus:  decimal.NewFromInt(10),
	})

	return r
}

// RegisterCurrency adds or updates a currency in the registry.
func (r *Registry) RegisterCurrency(code Code, meta Meta) {
	r.currencies.Register(string(code), registry.Meta{
		Name:   string(code),
		Active: true,
		Metadata: map[string]string{
			"decimals":    strconv.Itoa(meta.Decimals),
			"symbol":      meta.Symbol,
			"group_sep":   meta.GroupSep,
			"decimal_sep": meta.DecimalSep,
		},
	})
}

// RegisterCountry adds or updates a country with its currency and limits.
func (r *Registry) RegisterCountry(country Country, name string, code Code, limits Limits) {
	r.countries.Register(string(country), registry.Meta{
		Name:   name,
		Active: true,
		Metadata: map[string]string{
			"currency":       string(code),
			"min_deposit":    limits.MinDeposit.String(),
			"min_withdrawal": limits.MinWithdrawal.String(),
			"min_investment": limits.MinInvestment.String(),
			"welcome_bonus":  limits.WelcomeBonus.String(),
		},
	})
}

// Get returns display metadata for the given currency code.
func (r *Registry) Get(code Code) (Meta, error) {
	meta, ok := r.currencies.Get(string(code))
	if !ok {
		return Meta{}, ErrUnsupportedCurrency
	}
	decimals, err := strconv.Atoi(meta.Metadata["decimals"])
	if err != nil {
		decimals = 2
	}
	return Meta{
		Decimals:   decimals,
		Symbol:     meta.Metadata["symbol"],
		GroupSep:   meta.Metadata["group_sep"],
		DecimalSep: meta.Metadata["decimal_sep"],
	}, nil
}

// ForCountry returns the currency code used in the given country.
func (r *Registry) ForCountry(country Country) (Code, error) {
	meta, ok := r.countries.Get(string(country))
	if !ok {
		return "", ErrUnsupportedCountry
	}
	return Code(meta.Metadata["currency"]), nil
}

// LimitsFor returns the transaction limits for the given country.
func (r *Registry) LimitsFor(country Country) (Limits, error) {
	meta, ok := r.countries.Get(string(country))
	if !ok {
		return Limits{}, ErrUnsupportedCountry
	}
	parse := func(key string) decimal.Decimal {
		d, err := decimal.NewFromString(meta.Metadata[key])
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return Limits{
		MinDeposit:    parse("min_deposit"),
		MinWithdrawal: parse("min_withdrawal"),
		MinInvestment: parse("min_investment"),
		WelcomeBonus:  parse("welcome_bonus"),
	}, nil
}

// IsSupported checks if a currency code is registered.
func (r *Registry) IsSupported(code Code) bool {
	return r.currencies.IsRegistered(string(code))
}

// IsSupportedCountry checks if a country is registered.
func (r *Registry) IsSupportedCountry(country Country) bool {
	return r.countries.IsRegistered(string(country))
}

// Countries returns the registered countries in insertion order.
func (r *Registry) Countries() []Country {
	ids := r.countries.List()
	out := make([]Country, len(ids))
	for i, id := range ids {
		out[i] = Country(id)
	}
	return out
}

// Format renders an amount for the given country using its currency's
// locale rules, e.g. "$ 1.234.567 COP" or "S/ 1,234.56 PEN". Purely
// presentational; the ledger never parses formatted output.
func (r *Registry) Format(amount decimal.Decimal, country Country) string {
	code, err := r.ForCountry(country)
	if err != nil {
		return amount.String()
	}
	meta, err := r.Get(code)
	if err != nil {
		return amount.String()
	}

	fixed := amount.StringFixed(int32(meta.Decimals))
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	grouped := groupDigits(intPart, meta.GroupSep)

	var b strings.Builder
	b.WriteString(meta.Symbol)
	b.WriteString(" ")
	if neg {
		b.WriteString("-")
	}
	b.WriteString(grouped)
	if fracPart != "" {
		b.WriteString(meta.DecimalSep)
		b.WriteString(fracPart)
	}
	b.WriteString(" ")
	b.WriteString(string(code))
	return b.String()
}

// groupDigits inserts sep every three digits counting from the right.
func groupDigits(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Global registry instance, mirroring how reference data is consumed across
// the codebase.
var global = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return global }

// Get returns metadata for a currency from the default registry.
func Get(code Code) (Meta, error) { return global.Get(code) }

// ForCountry returns the currency for a country from the default registry.
func ForCountry(country Country) (Code, error) { return global.ForCountry(country) }

// LimitsFor returns the limits for a country from the default registry.
func LimitsFor(country Country) (Limits, error) { return global.LimitsFor(country) }

// IsSupported reports whether the currency is in the default registry.
func IsSupported(code Code) bool { return global.IsSupported(code) }

// IsSupportedCountry reports whether the country is in the default registry.
func IsSupportedCountry(country Country) bool { return global.IsSupportedCountry(country) }

// Format renders an amount using the default registry.
func Format(amount decimal.Decimal, country Country) string { return global.Format(amount, country) }
