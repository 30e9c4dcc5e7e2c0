package domain

import "strings"

const (
	SectorCrypto  = "Crypto"
	SectorUnknown = "Unknown"
	SectorCash    = "Cash"
)

const (
	tokyoSuffix  = ".T"
	cryptoSuffix = "-USD"
)

// InferCurrency guesses the trading currency from the ticker symbol:
// Tokyo listings (".T") and the bare "JPY" cash code are JPY, everything
// else defaults to USD.
func InferCurrency(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.HasSuffix(t, tokyoSuffix) || t == CurrencyJPY {
		return CurrencyJPY
	}
	return CurrencyUSD
}

// ResolveCurrency returns the explicit currency when set, otherwise the inferred one.
func ResolveCurrency(explicit, ticker string) string {
	if c := strings.ToUpper(strings.TrimSpace(explicit)); c != "" {
		return c
	}
	return InferCurrency(ticker)
}

// IsCryptoSymbol reports whether the symbol follows the crypto pair convention (e.g. BTC-USD).
func IsCryptoSymbol(ticker string) bool {
	return strings.HasSuffix(strings.ToUpper(strings.TrimSpace(ticker)), cryptoSuffix)
}
