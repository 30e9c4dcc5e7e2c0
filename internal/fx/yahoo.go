package fx

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// USDJPYSymbol is the Yahoo Finance currency pair symbol.
const USDJPYSymbol = "USDJPY=X"

// PriceLookup is the subset of a market data client used to read a currency pair.
type PriceLookup interface {
	LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// QuoteSource reads USD→JPY as the latest close of the USDJPY=X pair.
type QuoteSource struct {
	lookup PriceLookup
}

// NewQuoteSource wraps a market data client.
func NewQuoteSource(lookup PriceLookup) *QuoteSource {
	return &QuoteSource{lookup: lookup}
}

// USDJPY implements RateSource.
func (q *QuoteSource) USDJPY(ctx context.Context) (decimal.Decimal, error) {
	rate, err := q.lookup.LatestClose(ctx, USDJPYSymbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching %s: %w", USDJPYSymbol, err)
	}
	return rate, nil
}
