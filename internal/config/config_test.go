package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{"HOLDINGS_SOURCE", "TRADES_SOURCE", "FEE_RATE", "FALLBACK_USDJPY", "HISTORY_PERIOD", "HTTP_PORT", "FX_CACHE_TTL", "COINGECKO_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.HoldingsSource != "portfolio.csv" {
		t.Errorf("HoldingsSource = %q, want default", cfg.HoldingsSource)
	}
	if cfg.TradesSource != "" {
		t.Errorf("TradesSource = %q, want empty", cfg.TradesSource)
	}
	if !cfg.FeeRate.Equal(decimal.RequireFromString("0.00495")) {
		t.Errorf("FeeRate = %s, want 0.00495", cfg.FeeRate)
	}
	if !cfg.FallbackUSDJPY.Equal(decimal.NewFromInt(155)) {
		t.Errorf("FallbackUSDJPY = %s, want 155", cfg.FallbackUSDJPY)
	}
	if cfg.FXCacheTTL != time.Hour {
		t.Errorf("FXCacheTTL = %v, want 1h", cfg.FXCacheTTL)
	}
	if cfg.HistoryPeriod.String() != "6mo" {
		t.Errorf("HistoryPeriod = %q, want 6mo", cfg.HistoryPeriod)
	}
	if cfg.CoinGeckoURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("CoinGeckoURL = %q, want default", cfg.CoinGeckoURL)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOLDINGS_SOURCE", "https://example.com/portfolio.csv")
	t.Setenv("FEE_RATE", "0.001")
	t.Setenv("FALLBACK_USDJPY", "148.5")
	t.Setenv("HISTORY_PERIOD", "1y")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("QUOTE_CONCURRENCY", "8")
	t.Setenv("FETCH_RETRY_BASE_DELAY", "5s")

	cfg := Load()

	if cfg.HoldingsSource != "https://example.com/portfolio.csv" {
		t.Errorf("HoldingsSource = %q, want override", cfg.HoldingsSource)
	}
	if !cfg.FeeRate.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("FeeRate = %s, want 0.001", cfg.FeeRate)
	}
	if !cfg.FallbackUSDJPY.Equal(decimal.RequireFromString("148.5")) {
		t.Errorf("FallbackUSDJPY = %s, want 148.5", cfg.FallbackUSDJPY)
	}
	if cfg.HistoryPeriod.String() != "1y" {
		t.Errorf("HistoryPeriod = %q, want 1y", cfg.HistoryPeriod)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.QuoteConcurrency != 8 {
		t.Errorf("QuoteConcurrency = %d, want 8", cfg.QuoteConcurrency)
	}
	if cfg.FetchRetryBaseDelay != 5*time.Second {
		t.Errorf("FetchRetryBaseDelay = %v, want 5s", cfg.FetchRetryBaseDelay)
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("YAHOO_RETRY_MAX", "not-a-number")
	t.Setenv("YAHOO_RETRY_BASE_DELAY", "invalid-duration")
	t.Setenv("FEE_RATE", "-0.1")
	t.Setenv("FALLBACK_USDJPY", "abc")
	t.Setenv("HISTORY_PERIOD", "forever")

	cfg := Load()

	if cfg.YahooRetryMax != 3 {
		t.Errorf("YahooRetryMax = %d, want default 3 on invalid input", cfg.YahooRetryMax)
	}
	if cfg.YahooRetryBaseDelay != time.Second {
		t.Errorf("YahooRetryBaseDelay = %v, want default 1s on invalid input", cfg.YahooRetryBaseDelay)
	}
	if !cfg.FeeRate.Equal(decimal.RequireFromString("0.00495")) {
		t.Errorf("FeeRate = %s, want default on negative input", cfg.FeeRate)
	}
	if !cfg.FallbackUSDJPY.Equal(decimal.NewFromInt(155)) {
		t.Errorf("FallbackUSDJPY = %s, want default on invalid input", cfg.FallbackUSDJPY)
	}
	if cfg.HistoryPeriod.String() != "6mo" {
		t.Errorf("HistoryPeriod = %q, want default on invalid input", cfg.HistoryPeriod)
	}
}
