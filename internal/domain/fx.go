package domain

import "github.com/shopspring/decimal"

const (
	CurrencyJPY = "JPY"
	CurrencyUSD = "USD"
)

// FXTable maps a currency code to its JPY-equivalent multiplier.
type FXTable map[string]decimal.Decimal

// NewFXTable builds a table from a USD→JPY rate. JPY is always 1.
func NewFXTable(usdJPY decimal.Decimal) FXTable {
	return FXTable{
		CurrencyUSD: usdJPY,
		CurrencyJPY: decimal.NewFromInt(1),
	}
}

// Rate returns the multiplier for currency. JPY and unknown codes map to 1,
// so an unknown currency is treated as already JPY.
func (t FXTable) Rate(currency string) decimal.Decimal {
	if currency == CurrencyJPY {
		return decimal.NewFromInt(1)
	}
	if r, ok := t[currency]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}

// Known reports whether the table has an explicit rate for currency.
func (t FXTable) Known(currency string) bool {
	_, ok := t[currency]
	return ok || currency == CurrencyJPY
}
