package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/valuation"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HoldingsSource      string
	TradesSource        string
	FeeRate             decimal.Decimal
	FallbackUSDJPY      decimal.Decimal
	FXCacheTTL          time.Duration
	QuoteCacheTTL       time.Duration
	HistoryPeriod       domain.Period
	QuoteConcurrency    int
	YahooRetryMax       int
	YahooRetryBaseDelay time.Duration
	CoinGeckoURL        string
	CoinGeckoDelay      time.Duration
	CoinGeckoRetryMax   int
	FetchRetryMax       int
	FetchRetryBaseDelay time.Duration
	HTTPPort            string
	AdminAPIKey         string
	SheetsID            string
	GoogleCredentials   string
	XLSXExportPath      string
	ExportInterval      time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		HoldingsSource:      envOrDefaultWarn("HOLDINGS_SOURCE", "portfolio.csv"),
		TradesSource:        envOrDefault("TRADES_SOURCE", ""),
		FeeRate:             envOrDefaultDecimal("FEE_RATE", valuation.DefaultFeeRate),
		FallbackUSDJPY:      envOrDefaultDecimal("FALLBACK_USDJPY", decimal.NewFromInt(155)),
		FXCacheTTL:          envOrDefaultDuration("FX_CACHE_TTL", time.Hour),
		QuoteCacheTTL:       envOrDefaultDuration("QUOTE_CACHE_TTL", time.Hour),
		HistoryPeriod:       envOrDefaultPeriod("HISTORY_PERIOD", domain.MustParsePeriod("6mo")),
		QuoteConcurrency:    envOrDefaultInt("QUOTE_CONCURRENCY", 4),
		YahooRetryMax:       envOrDefaultInt("YAHOO_RETRY_MAX", 3),
		YahooRetryBaseDelay: envOrDefaultDuration("YAHOO_RETRY_BASE_DELAY", time.Second),
		CoinGeckoURL:        envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoDelay:      envOrDefaultDuration("COINGECKO_DELAY", 6*time.Second),
		CoinGeckoRetryMax:   envOrDefaultInt("COINGECKO_RETRY_MAX", 3),
		FetchRetryMax:       envOrDefaultInt("FETCH_RETRY_MAX", 3),
		FetchRetryBaseDelay: envOrDefaultDuration("FETCH_RETRY_BASE_DELAY", 2*time.Second),
		HTTPPort:            envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:         os.Getenv("ADMIN_API_KEY"),
		SheetsID:            os.Getenv("SHEETS_SPREADSHEET_ID"),
		GoogleCredentials:   os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		XLSXExportPath:      os.Getenv("XLSX_EXPORT_PATH"),
		ExportInterval:      envOrDefaultDuration("EXPORT_INTERVAL", 24*time.Hour),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Warn("env var not set, using default", "key", key, "default", defaultVal)
		return defaultVal
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			slog.Warn("invalid decimal env var, using default", "key", key, "value", v, "default", defaultVal.String())
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultPeriod(key string, defaultVal domain.Period) domain.Period {
	if v := os.Getenv(key); v != "" {
		p, err := domain.ParsePeriod(v)
		if err != nil {
			slog.Warn("invalid period env var, using default", "key", key, "value", v, "default", defaultVal.String())
			return defaultVal
		}
		return p
	}
	return defaultVal
}
