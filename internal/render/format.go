package render

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const notApplicable = "n/a"

// Money formats an amount with the currency's symbol and minor units,
// e.g. ¥1,234 or $12.50. Unknown currency codes fall back to "12.50 XXX".
func Money(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// MoneyPtr is Money for optional amounts.
func MoneyPtr(amount *decimal.Decimal, currency string) string {
	if amount == nil {
		return notApplicable
	}
	return Money(*amount, currency)
}

// Yen formats a JPY amount.
func Yen(amount decimal.Decimal) string { return Money(amount, "JPY") }

// YenPtr formats an optional JPY amount.
func YenPtr(amount *decimal.Decimal) string { return MoneyPtr(amount, "JPY") }

// Percent formats a percentage with two decimals.
func Percent(p *decimal.Decimal) string {
	if p == nil {
		return notApplicable
	}
	return p.StringFixed(2) + "%"
}

// Trend formats a P&L percentage with an up or down marker.
func Trend(p *decimal.Decimal) string {
	if p == nil {
		return notApplicable
	}
	switch {
	case p.IsPositive():
		return "▲ " + Percent(p)
	case p.IsNegative():
		return fmt.Sprintf("▼ %s%%", p.Abs().StringFixed(2))
	default:
		return Percent(p)
	}
}

// Quantity formats share counts without trailing zeros.
func Quantity(d decimal.Decimal) string {
	return d.String()
}
