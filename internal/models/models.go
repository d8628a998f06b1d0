// Package models provides domain models for the portfolio tracker.
package models

import (
	"time"
)

// AlertStatus classifies a holding's current price relative to its thresholds.
type AlertStatus string

const (
	// StatusHold means neither threshold has been reached.
	StatusHold AlertStatus = "HOLD"
	// StatusProfit means the target price has been reached.
	StatusProfit AlertStatus = "PROFIT"
	// StatusStop means the stop-loss price has been reached.
	StatusStop AlertStatus = "STOP"
)

// Holding represents a user-declared position in one asset.
// A threshold of 0 means "not set" and never triggers an alert.
type Holding struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"asset_id"`
	Quantity    float64   `json:"quantity"`
	AvgBuyPrice float64   `json:"avg_buy_price"`
	TargetPrice float64   `json:"target_price"`
	StopLoss    float64   `json:"stop_loss"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarketData maps asset identifiers to current USD unit prices.
// A missing entry means the asset has no price yet and is treated as 0.
type MarketData map[string]float64

// Clone returns an independent copy of the market data map.
func (m MarketData) Clone() MarketData {
	out := make(MarketData, len(m))
	for id, price := range m {
		out[id] = price
	}
	return out
}

// EnrichedHolding is a holding combined with live valuation and alert status.
// It is recomputed from (holdings, market data) and never persisted.
type EnrichedHolding struct {
	Holding

	CurrentPrice  float64     `json:"current_price"`
	TotalInvested float64     `json:"total_invested"`
	CurrentValue  float64     `json:"current_value"`
	PnL           float64     `json:"pnl"`
	PnLPercent    float64     `json:"pnl_percent"`
	Status        AlertStatus `json:"status"`
}

// PortfolioSummary aggregates valuation across all holdings.
type PortfolioSummary struct {
	HoldingCount    int     `json:"holding_count"`
	TotalInvested   float64 `json:"total_invested"`
	TotalValue      float64 `json:"total_value"`
	TotalPnL        float64 `json:"total_pnl"`
	TotalPnLPercent float64 `json:"total_pnl_percent"`
	ProfitAlerts    int     `json:"profit_alerts"`
	StopAlerts      int     `json:"stop_alerts"`
}
