package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/mtlprog/famfolio/internal/domain"
)

// Trade ledger columns. The direction may be named "action" or "type".
const (
	ColDate   = "date"
	ColAction = "action"
	ColType   = "type"
)

var requiredTradeColumns = []string{ColDate, ColTicker, ColShares}

var dateLayouts = []string{
	domain.DateFormat,
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
	"1/2/2006",
}

// ParseDate accepts the date layouts spreadsheets and CSV exports commonly use.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return domain.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ReadTrades converts a ledger table into trades. A ledger without an
// action/type column returns ErrNoActionColumn; other missing columns return
// a *ColumnError. Rows with an unparseable date or value are skipped and
// reported as *RowError values.
func ReadTrades(t *Table) ([]domain.Trade, []error, error) {
	actionCol := ColAction
	if !t.Has(ColAction) {
		if !t.Has(ColType) {
			return nil, nil, fmt.Errorf("%s: %w", t.Input, ErrNoActionColumn)
		}
		actionCol = ColType
	}
	if missing := t.Missing(requiredTradeColumns...); len(missing) > 0 {
		return nil, nil, &ColumnError{Input: t.Input, Missing: missing}
	}

	var trades []domain.Trade
	var rowErrs []error
	for i, row := range t.Rows {
		line := t.Line(i)
		rowErr := func(col string, err error) error {
			return &RowError{Input: t.Input, Row: line, Column: col, Value: t.Cell(row, col), Err: err}
		}

		date, err := ParseDate(t.Cell(row, ColDate))
		if err != nil {
			rowErrs = append(rowErrs, rowErr(ColDate, err))
			continue
		}
		ticker := t.Cell(row, ColTicker)
		if ticker == "" {
			rowErrs = append(rowErrs, rowErr(ColTicker, errors.New("empty ticker")))
			continue
		}
		action, err := domain.ParseTradeAction(t.Cell(row, actionCol))
		if err != nil {
			rowErrs = append(rowErrs, rowErr(actionCol, err))
			continue
		}
		shares, err := domain.ParseAmount(t.Cell(row, ColShares))
		if err != nil || !shares.IsPositive() {
			if err == nil {
				err = errors.New("share count must be positive")
			}
			rowErrs = append(rowErrs, rowErr(ColShares, err))
			continue
		}

		trades = append(trades, domain.Trade{
			Date:     date,
			Ticker:   ticker,
			Action:   action,
			Shares:   shares,
			Currency: domain.ResolveCurrency(t.Cell(row, ColCurrency), ticker),
		})
	}
	return trades, rowErrs, nil
}
