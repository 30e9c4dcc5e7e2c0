package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssetType classifies a holding row.
type AssetType string

const (
	AssetTypeStock  AssetType = "stock"
	AssetTypeCrypto AssetType = "crypto"
	AssetTypeCash   AssetType = "cash"
)

// ParseAssetType normalizes an asset_type cell into an AssetType.
func ParseAssetType(s string) (AssetType, error) {
	switch t := AssetType(strings.ToLower(strings.TrimSpace(s))); t {
	case AssetTypeStock, AssetTypeCrypto, AssetTypeCash:
		return t, nil
	default:
		return "", fmt.Errorf("unknown asset type %q", s)
	}
}

// IsPriced reports whether positions of this type are valued at a market price.
func (t AssetType) IsPriced() bool {
	return t == AssetTypeStock || t == AssetTypeCrypto
}

// Holding is one lot of the holdings snapshot. The same ticker may appear in several rows.
type Holding struct {
	Ticker    string          `json:"ticker"`
	AssetType AssetType       `json:"assetType"`
	Shares    decimal.Decimal `json:"shares"`
	BuyPrice  decimal.Decimal `json:"buyPrice"`
	Currency  string          `json:"currency,omitempty"`
	Sector    string          `json:"sector,omitempty"`

	// RealizedPnLJPY carries a closed-position figure through unchanged; nil means 0.
	RealizedPnLJPY *decimal.Decimal `json:"realizedPnlJpy,omitempty"`
}

// ValuedHolding is a Holding with every derived valuation field. The embedded
// Holding carries the resolved currency and sector.
// Nil pointers mean "not applicable": a missing price or a zero denominator.
type ValuedHolding struct {
	Holding
	PrevClose     *decimal.Decimal `json:"prevClose"`
	Fee           decimal.Decimal  `json:"fee"`
	MarketValue   *decimal.Decimal `json:"marketValue"`
	CostBasis     decimal.Decimal  `json:"costBasis"`
	PnLAbs        *decimal.Decimal `json:"pnlAbs"`
	PnLPct        *decimal.Decimal `json:"pnlPct"`
	FXToJPY       decimal.Decimal  `json:"fxToJpy"`
	MVJPY         *decimal.Decimal `json:"mvJpy"`
	CostJPY       decimal.Decimal  `json:"costJpy"`
	PnLJPY        *decimal.Decimal `json:"pnlJpy"`
	FeeJPY        decimal.Decimal  `json:"feeJpy"`
	PnLContribPct *decimal.Decimal `json:"pnlContribPct"`
	PnLOverMVPct  *decimal.Decimal `json:"pnlOverMvPct"`
}

// HasPrice reports whether the row has a market value.
func (v ValuedHolding) HasPrice() bool { return v.MarketValue != nil }

// Realized returns the realized P&L passthrough, 0 when absent.
func (h Holding) Realized() decimal.Decimal {
	if h.RealizedPnLJPY == nil {
		return decimal.Zero
	}
	return *h.RealizedPnLJPY
}
