package currency_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta-ict/ledger/pkg/currency"
)

func TestRegistry_DefaultCurrencies(t *testing.T) {
	meta, err := currency.Get(currency.COP)
	require.NoError(t, err)
	assert.Equal(t, 0, meta.Decimals)
	assert.Equal(t, "$", meta.Symbol)

	meta, err = currency.Get(currency.PEN)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Decimals)
	assert.Equal(t, "S/", meta.Symbol)

	_, err = currency.Get("USD")
	assert.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
}

func TestRegistry_ForCountry(t *testing.T) {
	code, err := currency.ForCountry(currency.CountryColombia)
	require.NoError(t, err)
	assert.Equal(t, currency.COP, code)

	code, err = currency.ForCountry(currency.CountryPeru)
	require.NoError(t, err)
	assert.Equal(t, currency.PEN, code)

	_, err = currency.ForCountry("BR")
	assert.ErrorIs(t, err, currency.ErrUnsupportedCountry)
}

func TestRegistry_Limits(t *testing.T) {
	co, err := currency.LimitsFor(currency.CountryColombia)
	require.NoError(t, err)
	assert.True(t, co.MinDeposit.Equal(decimal.NewFromInt(40000)))
	assert.True(t, co.MinWithdrawal.Equal(decimal.NewFromInt(25000)))
	assert.True(t, co.MinInvestment.Equal(decimal.NewFromInt(50000)))
	assert.True(t, co.WelcomeBonus.Equal(decimal.NewFromInt(12000)))

	pe, err := currency.LimitsFor(currency.CountryPeru)
	require.NoError(t, err)
	assert.True(t, pe.MinDeposit.Equal(decimal.NewFromInt(35)))
	assert.True(t, pe.MinWithdrawal.Equal(decimal.NewFromInt(22)))
	assert.True(t, pe.MinInvestment.Equal(decimal.NewFromInt(45)))
	assert.True(t, pe.WelcomeBonus.Equal(decimal.NewFromInt(10)))
}

func TestLimits_Min(t *testing.T) {
	limits, err := currency.LimitsFor(currency.CountryColombia)
	require.NoError(t, err)
	assert.True(t, limits.Min(currency.KindDeposit).Equal(limits.MinDeposit))
	assert.True(t, limits.Min(currency.KindWithdrawal).Equal(limits.MinWithdrawal))
	assert.True(t, limits.Min(currency.KindInvestment).Equal(limits.MinInvestment))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		country currency.Country
		want    string
	}{
		{"colombia groups with dots", "1234567", currency.CountryColombia, "$ 1.234.567 COP"},
		{"colombia small amount", "950", currency.CountryColombia, "$ 950 COP"},
		{"colombia zero", "0", currency.CountryColombia, "$ 0 COP"},
		{"peru groups with commas", "1234.56", currency.CountryPeru, "S/ 1,234.56 PEN"},
		{"peru pads decimals", "22", currency.CountryPeru, "S/ 22.00 PEN"},
		{"peru large", "1234567.5", currency.CountryPeru, "S/ 1,234,567.50 PEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := currency.Format(decimal.RequireFromString(tt.amount), tt.country)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, currency.IsSupported(currency.COP))
	assert.True(t, currency.IsSupported(currency.PEN))
	assert.False(t, currency.IsSupported("EUR"))
	assert.True(t, currency.IsSupportedCountry(currency.CountryColombia))
	assert.False(t, currency.IsSupportedCountry("AR"))
}
