// Package valuation turns holding rows into valued positions.
package valuation

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
)

// DefaultFeeRate is the broker commission charged on the purchase amount.
var DefaultFeeRate = decimal.RequireFromString("0.00495")

// Value computes every derived field of one holding row. It never fails:
// a missing price leaves the market-dependent fields nil.
//
// Contribution percentages depend on the whole portfolio and are left nil;
// ValueAll fills them.
func Value(h domain.Holding, quotes domain.Quotes, fx domain.FXTable, feeRate decimal.Decimal) domain.ValuedHolding {
	v := domain.ValuedHolding{Holding: h}

	switch h.AssetType {
	case domain.AssetTypeCash:
		v.Currency = domain.CashCurrency(h.Currency, h.Ticker)
		v.Sector = lo.Ternary(strings.TrimSpace(h.Sector) != "", h.Sector, domain.SectorCash)
		valueCash(&v)
	default:
		v.Currency = domain.ResolveCurrency(h.Currency, h.Ticker)
		v.Sector = lo.Ternary(strings.TrimSpace(h.Sector) != "", h.Sector, quotes.Sector(h.Ticker))
		valuePriced(&v, quotes.Price(h.Ticker), feeRate)
	}

	rate := fx.Rate(v.Currency)
	v.FXToJPY = rate
	v.MVJPY = domain.MulPtr(v.MarketValue, rate)
	v.CostJPY = v.CostBasis.Mul(rate)
	v.PnLJPY = domain.MulPtr(v.PnLAbs, rate)
	v.FeeJPY = v.Fee.Mul(rate)
	v.PnLOverMVPct = domain.PercentOf(v.PnLJPY, v.MVJPY)

	return v
}

// cash never gains or loses value: market value and cost basis are the balance itself.
func valueCash(v *domain.ValuedHolding) {
	v.Fee = decimal.Zero
	v.CostBasis = v.Shares
	v.MarketValue = domain.Ptr(v.Shares)
	v.PnLAbs = domain.Ptr(decimal.Zero)
	v.PnLPct = domain.Percent(decimal.Zero, v.CostBasis)
}

func valuePriced(v *domain.ValuedHolding, price *decimal.Decimal, feeRate decimal.Decimal) {
	gross := v.BuyPrice.Mul(v.Shares)
	v.Fee = gross.Mul(feeRate)
	v.CostBasis = gross.Add(v.Fee)

	if price == nil {
		return
	}
	v.PrevClose = domain.Ptr(*price)
	v.MarketValue = domain.Ptr(v.Shares.Mul(*price))
	v.PnLAbs = domain.SubPtr(v.MarketValue, v.CostBasis)
	v.PnLPct = domain.PercentOf(v.PnLAbs, &v.CostBasis)
}

// ValueAll values every row and then assigns each row's share of the total
// JPY P&L. Rows without a price are kept with nil market fields and are left
// out of the total.
func ValueAll(holdings []domain.Holding, quotes domain.Quotes, fx domain.FXTable, feeRate decimal.Decimal) []domain.ValuedHolding {
	valued := lo.Map(holdings, func(h domain.Holding, _ int) domain.ValuedHolding {
		return Value(h, quotes, fx, feeRate)
	})
	AssignContributions(valued)
	return valued
}

// AssignContributions sets PnLContribPct on every priced row. When the total
// P&L is exactly zero every contribution is zero.
func AssignContributions(valued []domain.ValuedHolding) {
	total := TotalPnLJPY(valued)
	for i := range valued {
		valued[i].PnLContribPct = Contribution(valued[i].PnLJPY, total)
	}
}

// TotalPnLJPY sums the JPY P&L of priced rows.
func TotalPnLJPY(valued []domain.ValuedHolding) decimal.Decimal {
	return lo.FromPtr(domain.SumPtrs(lo.Map(valued, func(v domain.ValuedHolding, _ int) *decimal.Decimal {
		return v.PnLJPY
	})))
}

// Contribution is pnl as a percentage of total; zero when total is zero and
// nil when pnl is missing.
func Contribution(pnl *decimal.Decimal, total decimal.Decimal) *decimal.Decimal {
	if pnl == nil {
		return nil
	}
	if total.IsZero() {
		return domain.Ptr(decimal.Zero)
	}
	return domain.Percent(*pnl, total)
}
