package ingest

import (
	"errors"
	"fmt"

	"github.com/mtlprog/famfolio/internal/domain"
)

// Holdings columns.
const (
	ColTicker    = "ticker"
	ColAssetType = "asset_type"
	ColShares    = "shares"
	ColBuyPrice  = "buy_price"
	ColCurrency  = "currency"
	ColSector    = "sector"
	ColRealized  = "realized_pnl_jpy"
)

var requiredHoldingColumns = []string{ColTicker, ColAssetType, ColShares, ColBuyPrice}

// ReadHoldings converts a holdings table into lots. A missing required column
// fails the whole input with a *ColumnError. Unusable rows are skipped and
// reported as *RowError values in the second return.
func ReadHoldings(t *Table) ([]domain.Holding, []error, error) {
	if missing := t.Missing(requiredHoldingColumns...); len(missing) > 0 {
		return nil, nil, &ColumnError{Input: t.Input, Missing: missing}
	}

	var holdings []domain.Holding
	var rowErrs []error
	for i, row := range t.Rows {
		h, err := parseHolding(t, row, t.Line(i))
		if err != nil {
			rowErrs = append(rowErrs, err)
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings, rowErrs, nil
}

func parseHolding(t *Table, row []string, line int) (domain.Holding, error) {
	rowErr := func(col string, err error) error {
		return &RowError{Input: t.Input, Row: line, Column: col, Value: t.Cell(row, col), Err: err}
	}

	ticker := t.Cell(row, ColTicker)
	if ticker == "" {
		return domain.Holding{}, rowErr(ColTicker, errors.New("empty ticker"))
	}
	assetType, err := domain.ParseAssetType(t.Cell(row, ColAssetType))
	if err != nil {
		return domain.Holding{}, rowErr(ColAssetType, err)
	}
	shares, err := domain.ParseAmount(t.Cell(row, ColShares))
	if err != nil {
		return domain.Holding{}, rowErr(ColShares, err)
	}
	if shares.IsNegative() {
		return domain.Holding{}, rowErr(ColShares, fmt.Errorf("negative share count"))
	}

	// cash rows commonly leave buy_price blank
	buyPrice := domain.SafeParse(t.Cell(row, ColBuyPrice))
	if assetType.IsPriced() {
		if buyPrice, err = domain.ParseAmount(t.Cell(row, ColBuyPrice)); err != nil {
			return domain.Holding{}, rowErr(ColBuyPrice, err)
		}
	}

	h := domain.Holding{
		Ticker:    ticker,
		AssetType: assetType,
		Shares:    shares,
		BuyPrice:  buyPrice,
		Currency:  t.Cell(row, ColCurrency),
		Sector:    t.Cell(row, ColSector),
	}
	if v := t.Cell(row, ColRealized); v != "" {
		realized, err := domain.ParseAmount(v)
		if err != nil {
			return domain.Holding{}, rowErr(ColRealized, err)
		}
		h.RealizedPnLJPY = &realized
	}
	return h, nil
}
