// Package render turns a report into markdown and terminal output.
package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/samber/lo"

	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/history"
	"github.com/mtlprog/famfolio/internal/report"
)

// HistoryRows is how many of the most recent history points are rendered.
const HistoryRows = 14

type view struct {
	Generated string
	USDJPY    string
	Fallback  bool
	FeeRate   string
	Period    string
	Totals    [][2]string
	Tickers   [][]string
	Sectors   [][]string
	History   [][2]string
	Stats     string
	Issues    []string
	Warnings  []string
}

const reportTemplate = `# Portfolio Report {{ .Generated }}

USDJPY **{{ .USDJPY }}**{{ if .Fallback }} (fallback){{ end }} · fee rate {{ .FeeRate }} · history {{ .Period }}

## Totals

| Metric | Value |
|:---|---:|
{{- range .Totals }}
| {{ index . 0 }} | {{ index . 1 }} |
{{- end }}

{{- if .Tickers }}

## Tickers

| Ticker | Sector | Shares | Buy | Prev Close | MV | P&L % | MV JPY | P&L JPY | Contrib | Share |
|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|---:|
{{- range .Tickers }}
| {{ join . " | " }} |
{{- end }}
{{- end -}}

{{- if .Sectors }}

## Sectors

| Sector | Positions | MV JPY | P&L JPY | MV % | P&L Contrib | P&L/MV |
|:---|---:|---:|---:|---:|---:|---:|
{{- range .Sectors }}
| {{ join . " | " }} |
{{- end }}
{{- end -}}

{{- if .History }}

## History
{{ if .Stats }}
{{ .Stats }}
{{ end }}
| Date | Total JPY |
|:---|---:|
{{- range .History }}
| {{ index . 0 }} | {{ index . 1 }} |
{{- end }}
{{- end -}}

{{- if .Issues }}

## Issues
{{ range .Issues }}
- {{ . }}
{{- end }}
{{- end -}}

{{- if .Warnings }}

## Warnings
{{ range .Warnings }}
- {{ . }}
{{- end }}
{{- end }}
`

var reportTmpl = template.Must(template.New("report").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(reportTemplate))

// Markdown renders the report as a markdown document.
func Markdown(rep report.Report) (string, error) {
	var b strings.Builder
	if err := reportTmpl.Execute(&b, newView(rep)); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return b.String(), nil
}

// Terminal renders the report for an ANSI terminal. style is a glamour
// style name such as "dark", "light" or "notty".
func Terminal(rep report.Report, style string) (string, error) {
	md, err := Markdown(rep)
	if err != nil {
		return "", err
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return "", fmt.Errorf("rendering markdown for terminal: %w", err)
	}
	return out, nil
}

func newView(rep report.Report) view {
	t := rep.Totals
	v := view{
		Generated: rep.GeneratedAt.Format("2006-01-02 15:04 MST"),
		USDJPY:    rep.FX.USDJPY.StringFixed(2),
		Fallback:  rep.FX.Fallback,
		FeeRate:   rep.FeeRate.Shift(2).String() + "%",
		Period:    rep.Period,
		Totals: [][2]string{
			{"Evaluation total", Yen(t.MarketValueJPY)},
			{"Cost", Yen(t.CostJPY)},
			{"Unrealized P&L", Yen(t.UnrealizedPnLJPY)},
			{"Realized P&L", Yen(t.RealizedPnLJPY)},
			{"Total P&L", Yen(t.TotalPnLJPY)},
			{"Total fee", Yen(t.FeeJPY)},
			{"Positions", fmt.Sprintf("%d (%d unpriced)", t.Positions, t.Unpriced)},
		},
		Issues: lo.Map(rep.Issues, func(i history.Issue, _ int) string {
			return i.Message
		}),
		Warnings: rep.Warnings,
	}

	v.Tickers = lo.Map(rep.Tickers, func(s domain.TickerSummary, _ int) []string {
		return []string{
			s.Ticker, s.Sector, Quantity(s.Shares),
			MoneyPtr(s.BuyPrice, s.Currency), MoneyPtr(s.PrevClose, s.Currency), MoneyPtr(s.MarketValue, s.Currency),
			Trend(s.PnLPct), YenPtr(s.MVJPY), YenPtr(s.PnLJPY), Percent(s.PnLContribPct), Percent(s.MVSharePct),
		}
	})
	v.Sectors = lo.Map(rep.Sectors, func(s domain.SectorSummary, _ int) []string {
		return []string{
			s.Sector, fmt.Sprint(s.Positions), YenPtr(s.MVJPY), YenPtr(s.PnLJPY),
			Percent(s.MVContribPct), Percent(s.PnLContribPct), Trend(s.PnLOverMVPct),
		}
	})

	recent := rep.History
	if len(recent) > HistoryRows {
		recent = recent[len(recent)-HistoryRows:]
	}
	v.History = lo.Map(recent, func(p domain.ValuePoint, _ int) [2]string {
		return [2]string{p.Date.Format(domain.DateFormat), Yen(p.Total)}
	})

	if s := rep.Stats; s != nil {
		v.Stats = fmt.Sprintf("Change %s (%s) · high %s · low %s · max drawdown %s · volatility %s",
			Yen(s.Change), Trend(s.ChangePct), Yen(s.High), Yen(s.Low), Percent(s.MaxDrawdownPct), Percent(s.VolatilityPct))
	}

	return v
}
