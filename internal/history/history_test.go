package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
)

type mockProvider struct {
	series map[string][]domain.PricePoint
	calls  map[string]int
}

func (m *mockProvider) History(_ context.Context, symbol string, _ domain.Period) ([]domain.PricePoint, error) {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[symbol]++
	s, ok := m.series[symbol]
	if !ok {
		return nil, errors.New("no data")
	}
	return s, nil
}

var today = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func point(d int, close string) domain.PricePoint {
	return domain.PricePoint{Date: day(d), Close: dec(close)}
}

func totalOn(t *testing.T, res Result, d int) decimal.Decimal {
	t.Helper()
	for _, p := range res.Series {
		if p.Date.Equal(day(d)) {
			return p.Total
		}
	}
	t.Fatalf("no point for 2024-03-%02d", d)
	return decimal.Zero
}

func TestBuildWindow(t *testing.T) {
	res := Build(context.Background(), nil, nil, &mockProvider{}, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	if len(res.Series) != 6 {
		t.Fatalf("len = %d, want 6 calendar days", len(res.Series))
	}
	if !res.Series[0].Date.Equal(day(5)) || !res.Series[5].Date.Equal(day(10)) {
		t.Errorf("range = %s..%s, want 2024-03-05..2024-03-10", res.Series[0].Date, res.Series[5].Date)
	}
}

func TestBuildTradeReplayStep(t *testing.T) {
	trades := []domain.Trade{{Date: day(7), Ticker: "AAA", Action: domain.TradeActionBuy, Shares: dec("10"), Currency: "USD"}}

	res := Build(context.Background(), nil, trades, &mockProvider{}, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	for d := 5; d < 7; d++ {
		if got := totalOn(t, res, d); !got.IsZero() {
			t.Errorf("total on day %d = %s, want 0 before the trade", d, got)
		}
	}
	if got := totalOn(t, res, 7); !got.Equal(dec("1500")) {
		t.Errorf("total on trade date = %s, want 1500", got)
	}
	if got := totalOn(t, res, 10); !got.Equal(dec("1500")) {
		t.Errorf("total after trade date = %s, want 1500", got)
	}
}

func TestBuildForwardFillAndFX(t *testing.T) {
	holdings := []domain.Holding{
		{Ticker: "AAPL", AssetType: domain.AssetTypeStock, Shares: dec("2")},
		{Ticker: "AAPL", AssetType: domain.AssetTypeStock, Shares: dec("3")},
		{Ticker: "7203.T", AssetType: domain.AssetTypeStock, Shares: dec("100")},
	}
	provider := &mockProvider{series: map[string][]domain.PricePoint{
		"AAPL":   {point(8, "101"), point(6, "100")},
		"7203.T": {point(5, "2000"), point(9, "2100")},
	}}

	res := Build(context.Background(), holdings, nil, provider, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	tests := []struct {
		day  int
		want string
	}{
		{5, "200000"}, // AAPL has no close yet
		{6, "275000"}, // 5*100*150 + 200000
		{7, "275000"}, // forward-filled
		{8, "275750"}, // 5*101*150 + 200000
		{9, "285750"}, // 7203.T at 2100
		{10, "285750"},
	}
	for _, tt := range tests {
		if got := totalOn(t, res, tt.day); !got.Equal(dec(tt.want)) {
			t.Errorf("day %d total = %s, want %s", tt.day, got, tt.want)
		}
	}
	if provider.calls["AAPL"] != 1 {
		t.Errorf("AAPL fetched %d times, want once for both lots", provider.calls["AAPL"])
	}
}

func TestBuildMissingSeriesTolerated(t *testing.T) {
	holdings := []domain.Holding{
		{Ticker: "GONE", AssetType: domain.AssetTypeStock, Shares: dec("10")},
		{Ticker: "JPY", AssetType: domain.AssetTypeCash, Shares: dec("1000")},
		{Ticker: "USD", AssetType: domain.AssetTypeCash, Shares: dec("10")},
	}

	res := Build(context.Background(), holdings, nil, &mockProvider{}, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	for _, p := range res.Series {
		if !p.Total.Equal(dec("2500")) {
			t.Errorf("%s total = %s, want constant cash 2500", p.Date.Format(domain.DateFormat), p.Total)
		}
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %v, want one for GONE", res.Warnings)
	}
}

func TestBuildOversellRejected(t *testing.T) {
	holdings := []domain.Holding{{Ticker: "AAA", AssetType: domain.AssetTypeStock, Shares: dec("5")}}
	trades := []domain.Trade{
		{Date: day(8), Ticker: "AAA", Action: domain.TradeActionSell, Shares: dec("3"), Currency: "JPY"},
		{Date: day(9), Ticker: "AAA", Action: domain.TradeActionSell, Shares: dec("4"), Currency: "JPY"},
		{Date: day(6), Ticker: "BBB", Action: domain.TradeActionSell, Shares: dec("1"), Currency: "JPY"},
	}

	res := Build(context.Background(), holdings, trades, &mockProvider{}, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	if len(res.Issues) != 2 {
		t.Fatalf("issues = %+v, want 2 oversells", res.Issues)
	}
	if res.Issues[0].Ticker != "BBB" || res.Issues[1].Ticker != "AAA" {
		t.Errorf("issues out of date order: %+v", res.Issues)
	}
	if res.Issues[1].Kind != IssueOversell || !res.Issues[1].Balance.Equal(dec("2")) {
		t.Errorf("issue = %+v, want oversell against balance 2", res.Issues[1])
	}
	if got := totalOn(t, res, 10); !got.Equal(dec("-3")) {
		t.Errorf("final total = %s, want -3 (only the valid sell applied)", got)
	}
}

func TestBuildCashWithdrawal(t *testing.T) {
	holdings := []domain.Holding{{Ticker: "JPY", AssetType: domain.AssetTypeCash, Shares: dec("500000"), Currency: "JPY"}}
	trades := []domain.Trade{{Date: day(7), Ticker: "JPY", Action: domain.TradeActionSell, Shares: dec("1000"), Currency: "JPY"}}

	res := Build(context.Background(), holdings, trades, &mockProvider{}, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	if len(res.Issues) != 0 {
		t.Fatalf("issues = %+v, want none for a covered withdrawal", res.Issues)
	}
	if got := totalOn(t, res, 6); !got.Equal(dec("500000")) {
		t.Errorf("day 6 total = %s, want 500000", got)
	}
	if got := totalOn(t, res, 7); !got.Equal(dec("499000")) {
		t.Errorf("day 7 total = %s, want 499000", got)
	}
}

func TestBuildCashTradeBlankCurrency(t *testing.T) {
	trades := []domain.Trade{{Date: day(8), Ticker: "JPY", Action: domain.TradeActionBuy, Shares: dec("1000")}}

	res := Build(context.Background(), nil, trades, &mockProvider{}, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	if got := totalOn(t, res, 8); !got.Equal(dec("1000")) {
		t.Errorf("day 8 total = %s, want 1000 (yen, not converted at the USD rate)", got)
	}
}

func TestBuildTradesOutsideWindowIgnored(t *testing.T) {
	trades := []domain.Trade{
		{Date: day(1), Ticker: "AAA", Action: domain.TradeActionBuy, Shares: dec("10"), Currency: "USD"},
		{Date: day(20), Ticker: "AAA", Action: domain.TradeActionBuy, Shares: dec("10"), Currency: "USD"},
	}

	res := Build(context.Background(), nil, trades, &mockProvider{}, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	for _, p := range res.Series {
		if !p.Total.IsZero() {
			t.Errorf("%s total = %s, want 0", p.Date.Format(domain.DateFormat), p.Total)
		}
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues = %v, want none", res.Issues)
	}
}

func TestBuildTradesReplayedInDateOrder(t *testing.T) {
	// the sell is listed first but happens after the buy
	trades := []domain.Trade{
		{Date: day(9), Ticker: "NEW", Action: domain.TradeActionSell, Shares: dec("4"), Currency: "JPY"},
		{Date: day(7), Ticker: "NEW", Action: domain.TradeActionBuy, Shares: dec("4"), Currency: "JPY"},
	}

	res := Build(context.Background(), nil, trades, &mockProvider{}, domain.NewFXTable(dec("150")), domain.MustParsePeriod("5d"), today)

	if len(res.Issues) != 0 {
		t.Errorf("issues = %v, want none when replayed chronologically", res.Issues)
	}
	if got := totalOn(t, res, 8); !got.Equal(dec("4")) {
		t.Errorf("day 8 total = %s, want 4", got)
	}
	if got := totalOn(t, res, 10); !got.IsZero() {
		t.Errorf("day 10 total = %s, want 0", got)
	}
}
