// Package report runs the full valuation pipeline and assembles every output table.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/fx"
	"github.com/mtlprog/famfolio/internal/history"
)

// Report is one complete valuation run.
type Report struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	FX          fx.Snapshot            `json:"fx"`
	FeeRate     decimal.Decimal        `json:"feeRate"`
	Period      string                 `json:"period"`
	Positions   []domain.ValuedHolding `json:"positions"`
	Tickers     []domain.TickerSummary `json:"tickers"`
	Sectors     []domain.SectorSummary `json:"sectors"`
	Totals      domain.Totals          `json:"totals"`
	History     []domain.ValuePoint    `json:"history"`
	Stats       *history.Stats         `json:"historyStats,omitempty"`
	Issues      []history.Issue        `json:"issues,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
}

// Input is an already-loaded holdings snapshot and trade ledger.
type Input struct {
	Holdings []domain.Holding
	Trades   []domain.Trade
	// Warnings raised while loading, carried into the report.
	Warnings []string
}
