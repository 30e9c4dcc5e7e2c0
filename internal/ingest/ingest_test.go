package ingest

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/famfolio/internal/domain"
)

func mustCSV(t *testing.T, body string) *Table {
	t.Helper()
	tbl, err := ParseCSV("test.csv", strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	return tbl
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" ticker ", "ticker"},
		{"Asset_Type", "asset_type"},
		{"\u3000buy_price\u3000", "buy_price"},
		{"\ufeffticker", "ticker"},
	}
	for _, tt := range tests {
		if got := NormalizeColumn(tt.in); got != tt.want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadHoldings(t *testing.T) {
	tbl := mustCSV(t, "\xef\xbb\xbfTicker, asset_type ,shares,buy_price,currency,sector,realized_pnl_jpy\n"+
		"7203.T,stock,100,2000,JPY,,\n"+
		"AAPL,stock,\"1,000\",150.5,,Technology,12000\n"+
		"JPY,cash,500000,,,,\n"+
		",,,,,,\n")

	holdings, rowErrs, err := ReadHoldings(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Errorf("row errors = %v, want none", rowErrs)
	}
	if len(holdings) != 3 {
		t.Fatalf("len = %d, want 3", len(holdings))
	}
	if !holdings[1].Shares.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("AAPL shares = %s, want 1000", holdings[1].Shares)
	}
	if holdings[1].Sector != "Technology" || holdings[1].Currency != "" {
		t.Errorf("AAPL optional columns = %q/%q", holdings[1].Sector, holdings[1].Currency)
	}
	if holdings[1].RealizedPnLJPY == nil || !holdings[1].RealizedPnLJPY.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("AAPL realized = %v, want 12000", holdings[1].RealizedPnLJPY)
	}
	if holdings[0].RealizedPnLJPY != nil {
		t.Error("blank realized_pnl_jpy should stay nil")
	}
	if holdings[2].AssetType != domain.AssetTypeCash || !holdings[2].BuyPrice.IsZero() {
		t.Errorf("cash row = %+v", holdings[2])
	}
}

func TestReadHoldingsMissingColumns(t *testing.T) {
	tbl := mustCSV(t, "ticker,shares\nAAPL,1\n")

	_, _, err := ReadHoldings(tbl)

	var colErr *ColumnError
	if !errors.As(err, &colErr) {
		t.Fatalf("err = %v, want *ColumnError", err)
	}
	if strings.Join(colErr.Missing, ",") != "asset_type,buy_price" {
		t.Errorf("missing = %v", colErr.Missing)
	}
}

func TestReadHoldingsBadRowsSkipped(t *testing.T) {
	tbl := mustCSV(t, "ticker,asset_type,shares,buy_price\n"+
		"AAPL,bond,1,1\n"+
		"MSFT,stock,abc,1\n"+
		"GOOG,stock,1,\n"+
		"AMZN,stock,-1,1\n"+
		"NVDA,stock,2,100\n")

	holdings, rowErrs, err := ReadHoldings(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(holdings) != 1 || holdings[0].Ticker != "NVDA" {
		t.Errorf("holdings = %+v, want only NVDA", holdings)
	}
	if len(rowErrs) != 4 {
		t.Fatalf("row errors = %d, want 4", len(rowErrs))
	}
	var rowErr *RowError
	if !errors.As(rowErrs[1], &rowErr) || rowErr.Row != 3 || rowErr.Column != ColShares {
		t.Errorf("second row error = %v, want row 3 shares", rowErrs[1])
	}
}

func TestRowErrorsReportSourceLines(t *testing.T) {
	tbl := mustCSV(t, "ticker,asset_type,shares,buy_price\n"+
		"\n"+
		",,,\n"+
		"NVDA,stock,2,100\n"+
		"\n"+
		"MSFT,stock,abc,1\n")

	_, rowErrs, err := ReadHoldings(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rowErr *RowError
	if len(rowErrs) != 1 || !errors.As(rowErrs[0], &rowErr) || rowErr.Row != 6 {
		t.Errorf("row errors = %v, want one on line 6", rowErrs)
	}

	tbl = mustCSV(t, "date,ticker,type,shares\n"+
		"2024-03-01,AAPL,buy,1\n"+
		",,,\n"+
		"not-a-date,AAPL,buy,1\n")
	_, rowErrs, err = ReadTrades(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rowErrs) != 1 || !errors.As(rowErrs[0], &rowErr) || rowErr.Row != 4 {
		t.Errorf("trade row errors = %v, want one on line 4", rowErrs)
	}
}

func TestReadTradesCashTickerCurrency(t *testing.T) {
	tbl := mustCSV(t, "date,ticker,type,shares\n2024-03-01,JPY,buy,1000\n2024-03-02,USD,sell,5\n")

	trades, rowErrs, err := ReadTrades(tbl)
	if err != nil || len(rowErrs) != 0 {
		t.Fatalf("err = %v, row errors = %v", err, rowErrs)
	}
	if trades[0].Currency != domain.CurrencyJPY || trades[1].Currency != domain.CurrencyUSD {
		t.Errorf("currencies = %q, %q, want JPY, USD", trades[0].Currency, trades[1].Currency)
	}
}

func TestReadTrades(t *testing.T) {
	tbl := mustCSV(t, "date,ticker,type,shares,currency\n"+
		"2024-03-01,AAPL,BUY,10,USD\n"+
		"2024/03/05,7203.T,sell,100,\n"+
		"not-a-date,AAPL,buy,1,USD\n"+
		"2024-03-06,AAPL,hold,1,USD\n")

	trades, rowErrs, err := ReadTrades(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("len = %d, want 2", len(trades))
	}
	if !trades[0].Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) || trades[0].Action != domain.TradeActionBuy {
		t.Errorf("first trade = %+v", trades[0])
	}
	if trades[1].Currency != domain.CurrencyJPY {
		t.Errorf("inferred currency = %q, want JPY", trades[1].Currency)
	}
	if len(rowErrs) != 2 {
		t.Fatalf("row errors = %v, want 2", rowErrs)
	}
	var rowErr *RowError
	if !errors.As(rowErrs[0], &rowErr) || rowErr.Column != ColDate || rowErr.Row != 4 {
		t.Errorf("date row error = %v", rowErrs[0])
	}
}

func TestReadTradesNoActionColumn(t *testing.T) {
	tbl := mustCSV(t, "date,ticker,shares,currency\n2024-03-01,AAPL,10,USD\n")

	_, _, err := ReadTrades(tbl)
	if !errors.Is(err, ErrNoActionColumn) {
		t.Errorf("err = %v, want ErrNoActionColumn", err)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-09", "2024/01/09", "2024/1/9", "2024-01-09 10:30:00", "1/9/2024"} {
		got, err := ParseDate(in)
		if err != nil || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseDate("09.01.2024"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadXLSX(t *testing.T) {
	data := workbook(t, [][]any{
		{"ticker", "asset_type", "shares", "buy_price"},
		{"AAPL", "stock", 3, 150.5},
	})
	path := filepath.Join(t.TempDir(), "holdings.xlsx")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	tbl, err := NewLoader(0, 0).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	holdings, _, err := ReadHoldings(tbl)
	if err != nil {
		t.Fatalf("ReadHoldings: %v", err)
	}
	if len(holdings) != 1 || !holdings[0].BuyPrice.Equal(decimal.RequireFromString("150.5")) {
		t.Errorf("holdings = %+v", holdings)
	}
}

func TestLoadRemoteRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ticker,asset_type,shares,buy_price\nAAPL,stock,1,100\n"))
	}))
	defer server.Close()

	tbl, err := NewLoader(2, time.Millisecond).Load(context.Background(), server.URL+"/portfolio.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tbl.Rows) != 1 || attempts != 2 {
		t.Errorf("rows = %d, attempts = %d; want 1, 2", len(tbl.Rows), attempts)
	}
}

func TestLoadRemoteNotFound(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := NewLoader(3, time.Millisecond).Load(context.Background(), server.URL+"/x.csv"); err == nil {
		t.Error("expected error for 404")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := NewLoader(0, 0).Load(context.Background(), filepath.Join(t.TempDir(), "none.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
