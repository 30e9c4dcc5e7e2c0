// Package aggregate rolls valued positions up into per-ticker, per-sector and
// portfolio-level summaries.
package aggregate

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/valuation"
)

type field func(v domain.ValuedHolding) *decimal.Decimal

func sumOf(rows []domain.ValuedHolding, f field) *decimal.Decimal {
	return domain.SumPtrs(lo.Map(rows, func(v domain.ValuedHolding, _ int) *decimal.Decimal { return f(v) }))
}

func meanOf(rows []domain.ValuedHolding, f field) *decimal.Decimal {
	return domain.MeanPtrs(lo.Map(rows, func(v domain.ValuedHolding, _ int) *decimal.Decimal { return f(v) }))
}

func costJPY(rows []domain.ValuedHolding) decimal.Decimal {
	return domain.Sum(lo.Map(rows, func(v domain.ValuedHolding, _ int) decimal.Decimal { return v.CostJPY }))
}

// groupOrdered partitions rows by key, keeping groups in first-seen order.
func groupOrdered(rows []domain.ValuedHolding, key func(domain.ValuedHolding) string) ([]string, map[string][]domain.ValuedHolding) {
	groups := lo.GroupBy(rows, key)
	order := lo.Uniq(lo.Map(rows, func(v domain.ValuedHolding, _ int) string { return key(v) }))
	return order, groups
}

// ByTicker combines lots of the same ticker. The result is sorted by PnLPct
// descending; equal or missing values keep input order, missing ones last.
func ByTicker(valued []domain.ValuedHolding) []domain.TickerSummary {
	order, groups := groupOrdered(valued, func(v domain.ValuedHolding) string { return v.Ticker })
	totalPnL := valuation.TotalPnLJPY(valued)
	totalMV := lo.FromPtr(sumOf(valued, func(v domain.ValuedHolding) *decimal.Decimal { return v.MVJPY }))

	summaries := lo.Map(order, func(ticker string, _ int) domain.TickerSummary {
		rows := groups[ticker]
		first := rows[0]
		s := domain.TickerSummary{
			Ticker:       ticker,
			AssetType:    first.AssetType,
			Sector:       first.Sector,
			Currency:     first.Currency,
			Lots:         len(rows),
			Shares:       domain.Sum(lo.Map(rows, func(v domain.ValuedHolding, _ int) decimal.Decimal { return v.Shares })),
			BuyPrice:     meanOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return domain.Ptr(v.BuyPrice) }),
			PrevClose:    first.PrevClose,
			MarketValue:  sumOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return v.MarketValue }),
			PnLAbs:       sumOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return v.PnLAbs }),
			PnLPct:       meanOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return v.PnLPct }),
			MVJPY:        sumOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return v.MVJPY }),
			CostJPY:      costJPY(rows),
			PnLJPY:       sumOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return v.PnLJPY }),
			PnLOverMVPct: meanOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return v.PnLOverMVPct }),
		}
		s.PnLContribPct = valuation.Contribution(s.PnLJPY, totalPnL)
		if s.MVJPY != nil {
			s.MVSharePct = domain.Percent(*s.MVJPY, totalMV)
		}
		return s
	})

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].PnLPct, summaries[j].PnLPct
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.GreaterThan(*b)
		}
	})
	return summaries
}

// BySector combines positions by sector label, sorted by sector name.
func BySector(valued []domain.ValuedHolding) []domain.SectorSummary {
	_, groups := groupOrdered(valued, func(v domain.ValuedHolding) string { return v.Sector })
	totalPnL := valuation.TotalPnLJPY(valued)
	totalMV := lo.FromPtr(sumOf(valued, func(v domain.ValuedHolding) *decimal.Decimal { return v.MVJPY }))

	sectors := lo.Keys(groups)
	sort.Strings(sectors)

	return lo.Map(sectors, func(sector string, _ int) domain.SectorSummary {
		rows := groups[sector]
		s := domain.SectorSummary{
			Sector:    sector,
			Positions: len(rows),
			MVJPY:     sumOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return v.MVJPY }),
			CostJPY:   costJPY(rows),
			PnLJPY:    sumOf(rows, func(v domain.ValuedHolding) *decimal.Decimal { return v.PnLJPY }),
		}
		s.PnLContribPct = valuation.Contribution(s.PnLJPY, totalPnL)
		if s.MVJPY != nil {
			s.MVContribPct = domain.Percent(*s.MVJPY, totalMV)
		}
		s.PnLOverMVPct = domain.PercentOf(s.PnLJPY, s.MVJPY)
		return s
	})
}

// CalculateTotals computes the portfolio totals. Each row's fee is converted
// with that row's own FX rate before summing.
func CalculateTotals(valued []domain.ValuedHolding) domain.Totals {
	t := lo.Reduce(valued, func(acc domain.Totals, v domain.ValuedHolding, _ int) domain.Totals {
		acc.MarketValueJPY = acc.MarketValueJPY.Add(lo.FromPtr(v.MVJPY))
		acc.CostJPY = acc.CostJPY.Add(v.CostJPY)
		acc.UnrealizedPnLJPY = acc.UnrealizedPnLJPY.Add(lo.FromPtr(v.PnLJPY))
		acc.RealizedPnLJPY = acc.RealizedPnLJPY.Add(v.Realized())
		acc.FeeJPY = acc.FeeJPY.Add(v.FeeJPY)
		acc.Positions++
		if !v.HasPrice() {
			acc.Unpriced++
		}
		return acc
	}, domain.Totals{})
	t.TotalPnLJPY = t.UnrealizedPnLJPY.Add(t.RealizedPnLJPY)
	return t
}
