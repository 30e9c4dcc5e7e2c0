package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Quotes is the result of a price/sector lookup keyed by ticker.
// A nil or absent price means the lookup failed for that ticker.
type Quotes struct {
	Prices  map[string]*decimal.Decimal `json:"prices"`
	Sectors map[string]string           `json:"sectors"`
}

// NewQuotes returns an empty Quotes ready for filling.
func NewQuotes() Quotes {
	return Quotes{
		Prices:  make(map[string]*decimal.Decimal),
		Sectors: make(map[string]string),
	}
}

// Price returns the latest close for ticker, or nil.
func (q Quotes) Price(ticker string) *decimal.Decimal {
	return q.Prices[ticker]
}

// Sector returns the sector for ticker. Crypto pairs are always "Crypto";
// anything the lookup did not classify is "Unknown".
func (q Quotes) Sector(ticker string) string {
	if IsCryptoSymbol(ticker) {
		return SectorCrypto
	}
	if s := strings.TrimSpace(q.Sectors[ticker]); s != "" {
		return s
	}
	return SectorUnknown
}

// CashCurrency resolves the currency of a cash row. Cash rows are commonly
// keyed by the currency code itself ("USD", "JPY"); anything else is JPY.
func CashCurrency(explicit, ticker string) string {
	if c := strings.ToUpper(strings.TrimSpace(explicit)); c != "" {
		return c
	}
	switch c := strings.ToUpper(strings.TrimSpace(ticker)); c {
	case CurrencyUSD, CurrencyJPY:
		return c
	}
	return CurrencyJPY
}
