package export

import (
	"context"
	"fmt"
	"time"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/mtlprog/famfolio/internal/report"
)

// SheetMonitoring is an append-only log with one row of totals per export.
const SheetMonitoring = "MONITORING"

var monitoringHeader = []any{
	"Date", "USDJPY", "Evaluation total", "Cost", "Unrealized P&L",
	"Realized P&L", "Total P&L", "Fee", "Positions", "Unpriced",
}

// buildMonitoringRow renders the totals of one report as a MONITORING row.
func buildMonitoringRow(rep report.Report, at time.Time) []any {
	t := rep.Totals
	return []any{
		at.UTC().Format("02.01.2006"),
		toFloat(rep.FX.USDJPY),
		toFloat(t.MarketValueJPY),
		toFloat(t.CostJPY),
		toFloat(t.UnrealizedPnLJPY),
		toFloat(t.RealizedPnLJPY),
		toFloat(t.TotalPnLJPY),
		toFloat(t.FeeJPY),
		float64(t.Positions),
		float64(t.Unpriced),
	}
}

// AppendMonitoring ensures the MONITORING sheet exists, writes the header if
// the sheet is new or empty, then appends one row for this report.
func (w *SheetsWriter) AppendMonitoring(ctx context.Context, rep report.Report) error {
	meta, err := w.ensureSheets(ctx, SheetMonitoring)
	if err != nil {
		return fmt.Errorf("ensuring MONITORING sheet: %w", err)
	}

	existing, err := w.svc.Spreadsheets.Values.Get(
		w.spreadsheetID, "MONITORING!A1:A1",
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading MONITORING header: %w", err)
	}

	if len(existing.Values) == 0 {
		_, err = w.svc.Spreadsheets.Values.Update(
			w.spreadsheetID,
			"MONITORING!A1",
			&sheets.ValueRange{Values: [][]any{monitoringHeader}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("writing MONITORING header: %w", err)
		}
	}

	_, err = w.svc.Spreadsheets.Values.Append(
		w.spreadsheetID,
		"MONITORING!A:J",
		&sheets.ValueRange{Values: [][]any{buildMonitoringRow(rep, rep.GeneratedAt)}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending MONITORING row: %w", err)
	}

	return w.applyMonitoringFormatting(ctx, meta[SheetMonitoring])
}

// applyMonitoringFormatting: header like the other sheets, date column as
// d.m.yyyy, money columns as #,##0.
func (w *SheetsWriter) applyMonitoringFormatting(ctx context.Context, mon sheetMeta) error {
	cols := int64(len(monitoringHeader))
	reqs := headerFormatReqs(mon.id, cols)

	reqs = append(reqs, cellFormatReq(mon.id, 1, 10000, 0, 1,
		&sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "DATE", Pattern: "d.m.yyyy"}},
		"userEnteredFormat.numberFormat"))
	reqs = append(reqs, cellFormatReq(mon.id, 1, 10000, 2, 8,
		&sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: "#,##0"}},
		"userEnteredFormat.numberFormat"))

	return w.batchUpdate(ctx, reqs, "formatting MONITORING sheet")
}
