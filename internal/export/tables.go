package export

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/report"
)

// Sheet names, in the order they are written.
const (
	SheetPositions = "POSITIONS"
	SheetTickers   = "TICKERS"
	SheetSectors   = "SECTORS"
	SheetTotals    = "TOTALS"
	SheetHistory   = "HISTORY"
)

// Sheet is one named table: a header row followed by data rows.
type Sheet struct {
	Name string
	Rows [][]any
}

// BuildSheets renders every output table of a report.
func BuildSheets(rep report.Report) []Sheet {
	return []Sheet{
		{Name: SheetPositions, Rows: buildPositions(rep.Positions)},
		{Name: SheetTickers, Rows: buildTickers(rep.Tickers)},
		{Name: SheetSectors, Rows: buildSectors(rep.Sectors)},
		{Name: SheetTotals, Rows: buildTotals(rep)},
		{Name: SheetHistory, Rows: buildHistory(rep.History)},
	}
}

// Columns: Ticker | Type | Sector | Currency | Shares | Buy Price | Prev Close | Fee | Market Value |
// Cost Basis | P&L | P&L % | FX | MV JPY | Cost JPY | P&L JPY | Fee JPY | Contrib % | P&L/MV % | Realized JPY
func buildPositions(rows []domain.ValuedHolding) [][]any {
	data := [][]any{{
		"Ticker", "Type", "Sector", "Currency", "Shares", "Buy Price", "Prev Close", "Fee",
		"Market Value", "Cost Basis", "P&L", "P&L %", "FX", "MV JPY", "Cost JPY", "P&L JPY",
		"Fee JPY", "Contrib %", "P&L/MV %", "Realized JPY",
	}}
	for _, v := range rows {
		data = append(data, []any{
			v.Ticker, string(v.AssetType), v.Sector, v.Currency,
			toFloat(v.Shares), toFloat(v.BuyPrice), ptrFloat(v.PrevClose), toFloat(v.Fee),
			ptrFloat(v.MarketValue), toFloat(v.CostBasis), ptrFloat(v.PnLAbs), ptrFloat(v.PnLPct),
			toFloat(v.FXToJPY), ptrFloat(v.MVJPY), toFloat(v.CostJPY), ptrFloat(v.PnLJPY),
			toFloat(v.FeeJPY), ptrFloat(v.PnLContribPct), ptrFloat(v.PnLOverMVPct), toFloat(v.Realized()),
		})
	}
	return data
}

// Columns: Ticker | Type | Sector | Lots | Shares | Avg Buy Price | Prev Close | Market Value |
// P&L | Avg P&L % | MV JPY | P&L JPY | Contrib % | Avg P&L/MV % | MV Share %
func buildTickers(rows []domain.TickerSummary) [][]any {
	data := [][]any{{
		"Ticker", "Type", "Sector", "Lots", "Shares", "Avg Buy Price", "Prev Close", "Market Value",
		"P&L", "Avg P&L %", "MV JPY", "P&L JPY", "Contrib %", "Avg P&L/MV %", "MV Share %",
	}}
	for _, s := range rows {
		data = append(data, []any{
			s.Ticker, string(s.AssetType), s.Sector, s.Lots, toFloat(s.Shares),
			ptrFloat(s.BuyPrice), ptrFloat(s.PrevClose), ptrFloat(s.MarketValue), ptrFloat(s.PnLAbs),
			ptrFloat(s.PnLPct), ptrFloat(s.MVJPY), ptrFloat(s.PnLJPY), ptrFloat(s.PnLContribPct),
			ptrFloat(s.PnLOverMVPct), ptrFloat(s.MVSharePct),
		})
	}
	return data
}

// Columns: Sector | Positions | MV JPY | P&L JPY | MV Contrib % | P&L Contrib % | P&L/MV %
func buildSectors(rows []domain.SectorSummary) [][]any {
	data := [][]any{{"Sector", "Positions", "MV JPY", "P&L JPY", "MV Contrib %", "P&L Contrib %", "P&L/MV %"}}
	for _, s := range rows {
		data = append(data, []any{
			s.Sector, s.Positions, ptrFloat(s.MVJPY), ptrFloat(s.PnLJPY),
			ptrFloat(s.MVContribPct), ptrFloat(s.PnLContribPct), ptrFloat(s.PnLOverMVPct),
		})
	}
	return data
}

// buildTotals is a two-column key/value table.
func buildTotals(rep report.Report) [][]any {
	t := rep.Totals
	return [][]any{
		{"Metric", "Value"},
		{"Generated", rep.GeneratedAt.Format("2006-01-02 15:04 MST")},
		{"USDJPY", toFloat(rep.FX.USDJPY)},
		{"USDJPY fallback", lo.Ternary(rep.FX.Fallback, "yes", "no")},
		{"Evaluation total (JPY)", toFloat(t.MarketValueJPY)},
		{"Cost (JPY)", toFloat(t.CostJPY)},
		{"Unrealized P&L (JPY)", toFloat(t.UnrealizedPnLJPY)},
		{"Realized P&L (JPY)", toFloat(t.RealizedPnLJPY)},
		{"Total P&L (JPY)", toFloat(t.TotalPnLJPY)},
		{"Total fee (JPY)", toFloat(t.FeeJPY)},
		{"Positions", t.Positions},
		{"Unpriced positions", t.Unpriced},
	}
}

func buildHistory(points []domain.ValuePoint) [][]any {
	data := [][]any{{"Date", "Total JPY"}}
	for _, p := range points {
		data = append(data, []any{p.Date.Format(domain.DateFormat), toFloat(p.Total)})
	}
	return data
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func ptrFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
