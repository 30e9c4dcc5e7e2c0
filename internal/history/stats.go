package history

import (
	"log/slog"
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
)

// Stats summarizes a value series. Percentages are nil when their base is zero.
type Stats struct {
	First          decimal.Decimal  `json:"first"`
	Last           decimal.Decimal  `json:"last"`
	High           decimal.Decimal  `json:"high"`
	Low            decimal.Decimal  `json:"low"`
	Change         decimal.Decimal  `json:"change"`
	ChangePct      *decimal.Decimal `json:"changePct"`
	MaxDrawdownPct *decimal.Decimal `json:"maxDrawdownPct"`
	// VolatilityPct is the sample standard deviation of daily returns.
	VolatilityPct *decimal.Decimal `json:"volatilityPct"`
}

// Summarize returns nil for an empty series.
func Summarize(series []domain.ValuePoint) *Stats {
	if len(series) == 0 {
		return nil
	}
	values := lo.Map(series, func(p domain.ValuePoint, _ int) decimal.Decimal { return p.Total })

	first, last := values[0], values[len(values)-1]
	s := &Stats{
		First:          first,
		Last:           last,
		High:           decimal.Max(values[0], values[1:]...),
		Low:            decimal.Min(values[0], values[1:]...),
		Change:         last.Sub(first),
		ChangePct:      domain.Percent(last.Sub(first), first),
		MaxDrawdownPct: maxDrawdown(values),
	}

	if returns := dailyReturns(values); len(returns) >= 2 {
		s.VolatilityPct = domain.Ptr(stdDev(returns))
	}
	return s
}

// dailyReturns are day-over-day changes in percent, skipping days whose
// previous value is not positive.
func dailyReturns(values []decimal.Decimal) []decimal.Decimal {
	var out []decimal.Decimal
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if !prev.IsPositive() {
			continue
		}
		out = append(out, values[i].Sub(prev).Div(prev).Shift(2))
	}
	return out
}

// maxDrawdown is the largest peak-to-trough fall in percent of the peak.
func maxDrawdown(values []decimal.Decimal) *decimal.Decimal {
	var (
		peak  decimal.Decimal
		worst *decimal.Decimal
	)
	for _, v := range values {
		if v.GreaterThan(peak) {
			peak = v
		}
		if !peak.IsPositive() {
			continue
		}
		dd := peak.Sub(v).Div(peak).Shift(2)
		if worst == nil || dd.GreaterThan(*worst) {
			worst = &dd
		}
	}
	return worst
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return domain.Sum(values).Div(decimal.NewFromInt(int64(len(values))))
}

func stdDev(values []decimal.Decimal) decimal.Decimal {
	if len(values) < 2 {
		return decimal.Zero
	}
	m := mean(values)
	sumSqDiff := lo.Reduce(values, func(acc decimal.Decimal, v decimal.Decimal, _ int) decimal.Decimal {
		diff := v.Sub(m)
		return acc.Add(diff.Mul(diff))
	}, decimal.Zero)

	variance := sumSqDiff.Div(decimal.NewFromInt(int64(len(values) - 1)))
	f, exact := variance.Float64()
	if !exact {
		slog.Debug("precision loss in stdDev float64 conversion", "variance", variance.String())
	}
	return decimal.NewFromFloat(math.Sqrt(f))
}
