package domain

import "github.com/shopspring/decimal"

// TickerSummary rolls up every lot of one ticker. Flow quantities are summed;
// BuyPrice, PnLPct and PnLOverMVPct are unweighted means across lots.
type TickerSummary struct {
	Ticker        string           `json:"ticker"`
	AssetType     AssetType        `json:"assetType"`
	Sector        string           `json:"sector"`
	Currency      string           `json:"currency"`
	Lots          int              `json:"lots"`
	Shares        decimal.Decimal  `json:"shares"`
	BuyPrice      *decimal.Decimal `json:"buyPrice"`
	PrevClose     *decimal.Decimal `json:"prevClose"`
	MarketValue   *decimal.Decimal `json:"marketValue"`
	PnLAbs        *decimal.Decimal `json:"pnlAbs"`
	PnLPct        *decimal.Decimal `json:"pnlPct"`
	MVJPY         *decimal.Decimal `json:"mvJpy"`
	CostJPY       decimal.Decimal  `json:"costJpy"`
	PnLJPY        *decimal.Decimal `json:"pnlJpy"`
	PnLContribPct *decimal.Decimal `json:"pnlContribPct"`
	PnLOverMVPct  *decimal.Decimal `json:"pnlOverMvPct"`
	MVSharePct    *decimal.Decimal `json:"mvSharePct"`
}

// SectorSummary rolls up every position of one sector, in JPY.
type SectorSummary struct {
	Sector        string           `json:"sector"`
	Positions     int              `json:"positions"`
	MVJPY         *decimal.Decimal `json:"mvJpy"`
	CostJPY       decimal.Decimal  `json:"costJpy"`
	PnLJPY        *decimal.Decimal `json:"pnlJpy"`
	MVContribPct  *decimal.Decimal `json:"mvContribPct"`
	PnLContribPct *decimal.Decimal `json:"pnlContribPct"`
	PnLOverMVPct  *decimal.Decimal `json:"pnlOverMvPct"`
}

// Totals are the portfolio-level figures, all in JPY.
type Totals struct {
	MarketValueJPY   decimal.Decimal `json:"marketValueJpy"`
	CostJPY          decimal.Decimal `json:"costJpy"`
	UnrealizedPnLJPY decimal.Decimal `json:"unrealizedPnlJpy"`
	RealizedPnLJPY   decimal.Decimal `json:"realizedPnlJpy"`
	TotalPnLJPY      decimal.Decimal `json:"totalPnlJpy"`
	FeeJPY           decimal.Decimal `json:"feeJpy"`
	Positions        int             `json:"positions"`
	Unpriced         int             `json:"unpriced"`
}
