// Package history reconstructs a daily total-value series for the portfolio
// from price history and the trade ledger.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
)

// SeriesProvider returns daily closes for a symbol.
type SeriesProvider interface {
	History(ctx context.Context, symbol string, period domain.Period) ([]domain.PricePoint, error)
}

// IssueOversell marks a sell larger than the running share balance.
const IssueOversell = "oversell"

// Issue is a data-consistency problem found while replaying trades.
type Issue struct {
	Date    time.Time       `json:"date"`
	Ticker  string          `json:"ticker"`
	Kind    string          `json:"kind"`
	Shares  decimal.Decimal `json:"shares"`
	Balance decimal.Decimal `json:"balance"`
	Message string          `json:"message"`
}

// Result is a reconstructed series with everything that degraded it.
type Result struct {
	Series   []domain.ValuePoint `json:"series"`
	Issues   []Issue             `json:"issues,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
}

type position struct {
	ticker   string
	shares   decimal.Decimal
	currency string
}

// Build returns one point per calendar day from period.Start(today) through
// today. Each priced ticker contributes shares × close × fx, forward-filled
// over days without a close and zero before its first close. Cash adds a
// constant. Trades inside the window shift the total by ±shares × fx from
// their date onward; trades outside it are ignored.
func Build(ctx context.Context, holdings []domain.Holding, trades []domain.Trade, provider SeriesProvider, fx domain.FXTable, period domain.Period, today time.Time) Result {
	end := domain.Day(today)
	start := period.Start(end)
	days := int(end.Sub(start).Hours()/24) + 1

	totals := make([]decimal.Decimal, days)
	var res Result

	for _, p := range pricedPositions(holdings) {
		points, err := provider.History(ctx, p.ticker, period)
		if err != nil {
			w := fmt.Sprintf("price history unavailable for %s, excluded from history: %v", p.ticker, err)
			slog.Warn("price history unavailable", "ticker", p.ticker, "error", err)
			res.Warnings = append(res.Warnings, w)
			continue
		}
		addSeries(totals, start, points, p.shares.Mul(fx.Rate(p.currency)))
	}

	cash := lo.Reduce(holdings, func(acc decimal.Decimal, h domain.Holding, _ int) decimal.Decimal {
		if h.AssetType != domain.AssetTypeCash {
			return acc
		}
		return acc.Add(h.Shares.Mul(fx.Rate(domain.CashCurrency(h.Currency, h.Ticker))))
	}, decimal.Zero)
	for i := range totals {
		totals[i] = totals[i].Add(cash)
	}

	res.Issues = replay(totals, start, end, holdings, trades, fx)

	res.Series = make([]domain.ValuePoint, days)
	for i := range totals {
		res.Series[i] = domain.ValuePoint{Date: start.AddDate(0, 0, i), Total: totals[i]}
	}
	return res
}

// pricedPositions sums share counts per stock/crypto ticker in first-seen order.
func pricedPositions(holdings []domain.Holding) []position {
	priced := lo.Filter(holdings, func(h domain.Holding, _ int) bool { return h.AssetType.IsPriced() })
	groups := lo.GroupBy(priced, func(h domain.Holding) string { return h.Ticker })
	order := lo.Uniq(lo.Map(priced, func(h domain.Holding, _ int) string { return h.Ticker }))

	return lo.Map(order, func(ticker string, _ int) position {
		rows := groups[ticker]
		return position{
			ticker:   ticker,
			shares:   domain.Sum(lo.Map(rows, func(h domain.Holding, _ int) decimal.Decimal { return h.Shares })),
			currency: domain.ResolveCurrency(rows[0].Currency, ticker),
		}
	})
}

// addSeries adds close × mult to totals, forward-filling gaps.
func addSeries(totals []decimal.Decimal, start time.Time, points []domain.PricePoint, mult decimal.Decimal) {
	sorted := append([]domain.PricePoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var last *decimal.Decimal
	next := 0
	for i := range totals {
		day := start.AddDate(0, 0, i)
		for next < len(sorted) && !domain.Day(sorted[next].Date).After(day) {
			c := sorted[next].Close
			last = &c
			next++
		}
		if last != nil {
			totals[i] = totals[i].Add(last.Mul(mult))
		}
	}
}

// replay applies in-window trades in date order. The running balance per
// ticker starts from the current holdings; a sell that exceeds it is
// rejected and reported.
func replay(totals []decimal.Decimal, start, end time.Time, holdings []domain.Holding, trades []domain.Trade, fx domain.FXTable) []Issue {
	balances := make(map[string]decimal.Decimal)
	cashCurrency := make(map[string]string)
	for _, h := range holdings {
		balances[h.Ticker] = balances[h.Ticker].Add(h.Shares)
		if h.AssetType == domain.AssetTypeCash {
			if _, ok := cashCurrency[h.Ticker]; !ok {
				cashCurrency[h.Ticker] = domain.CashCurrency(h.Currency, h.Ticker)
			}
		}
	}

	ordered := append([]domain.Trade(nil), trades...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	var issues []Issue
	skipped := 0
	for _, tr := range ordered {
		day := domain.Day(tr.Date)
		if day.Before(start) || day.After(end) {
			skipped++
			continue
		}

		balance := balances[tr.Ticker]
		if tr.Action == domain.TradeActionSell && tr.Shares.GreaterThan(balance) {
			msg := fmt.Sprintf("sell of %s %s on %s exceeds balance %s; trade not applied",
				tr.Shares, tr.Ticker, day.Format(domain.DateFormat), balance)
			slog.Warn("oversell rejected", "ticker", tr.Ticker, "date", day.Format(domain.DateFormat),
				"shares", tr.Shares.String(), "balance", balance.String())
			issues = append(issues, Issue{
				Date:    day,
				Ticker:  tr.Ticker,
				Kind:    IssueOversell,
				Shares:  tr.Shares,
				Balance: balance,
				Message: msg,
			})
			continue
		}

		signed := tr.Shares.Mul(tr.Action.Sign())
		balances[tr.Ticker] = balance.Add(signed)

		currency := domain.ResolveCurrency(tr.Currency, tr.Ticker)
		if c, ok := cashCurrency[tr.Ticker]; ok && strings.TrimSpace(tr.Currency) == "" {
			currency = c
		}
		delta := signed.Mul(fx.Rate(currency))
		for i := int(day.Sub(start).Hours() / 24); i < len(totals); i++ {
			totals[i] = totals[i].Add(delta)
		}
	}

	if skipped > 0 {
		slog.Info("trades outside history window ignored", "count", skipped,
			"from", start.Format(domain.DateFormat), "to", end.Format(domain.DateFormat))
	}
	return issues
}
