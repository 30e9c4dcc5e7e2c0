package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradeAction is the direction of a ledger entry.
type TradeAction string

const (
	TradeActionBuy  TradeAction = "buy"
	TradeActionSell TradeAction = "sell"
)

// ParseTradeAction normalizes an action/type cell.
func ParseTradeAction(s string) (TradeAction, error) {
	switch a := TradeAction(strings.ToLower(strings.TrimSpace(s))); a {
	case TradeActionBuy, TradeActionSell:
		return a, nil
	default:
		return "", fmt.Errorf("unknown trade action %q", s)
	}
}

// Sign returns +1 for buys and -1 for sells.
func (a TradeAction) Sign() decimal.Decimal {
	if a == TradeActionSell {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Trade is one immutable ledger entry. Date is normalized to midnight UTC.
type Trade struct {
	Date     time.Time       `json:"date"`
	Ticker   string          `json:"ticker"`
	Action   TradeAction     `json:"action"`
	Shares   decimal.Decimal `json:"shares"`
	Currency string          `json:"currency"`
}
