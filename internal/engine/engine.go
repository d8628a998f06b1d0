// Package engine derives live valuation and alert status from holdings and market data.
package engine

import (
	"cryptofolio/internal/models"
)

// Calculate maps holdings and current prices to enriched rows.
// It is pure and order-preserving: row i corresponds to holding i.
// Assets without a price are valued at 0, which reads as a full loss
// until the next successful fetch.
func Calculate(holdings []models.Holding, prices models.MarketData) []models.EnrichedHolding {
	rows := make([]models.EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		price := prices[h.AssetID]

		row := models.EnrichedHolding{
			Holding:       h,
			CurrentPrice:  price,
			TotalInvested: h.Quantity * h.AvgBuyPrice,
			CurrentValue:  h.Quantity * price,
			Status:        alertStatus(h, price),
		}
		row.PnL = row.CurrentValue - row.TotalInvested
		if h.AvgBuyPrice > 0 {
			row.PnLPercent = ((price - h.AvgBuyPrice) / h.AvgBuyPrice) * 100
		}

		rows = append(rows, row)
	}
	return rows
}

// alertStatus evaluates the alert thresholds for a holding.
// PROFIT takes precedence over STOP when both conditions hold.
func alertStatus(h models.Holding, price float64) models.AlertStatus {
	switch {
	case h.TargetPrice > 0 && price >= h.TargetPrice:
		return models.StatusProfit
	case h.StopLoss > 0 && price <= h.StopLoss:
		return models.StatusStop
	default:
		return models.StatusHold
	}
}

// Summarize aggregates enriched rows into portfolio totals.
func Summarize(rows []models.EnrichedHolding) models.PortfolioSummary {
	summary := models.PortfolioSummary{HoldingCount: len(rows)}

	for _, row := range rows {
		summary.TotalInvested += row.TotalInvested
		summary.TotalValue += row.CurrentValue
		summary.TotalPnL += row.PnL

		switch row.Status {
		case models.StatusProfit:
			summary.ProfitAlerts++
		case models.StatusStop:
			summary.StopAlerts++
		}
	}

	if summary.TotalInvested > 0 {
		summary.TotalPnLPercent = (summary.TotalPnL / summary.TotalInvested) * 100
	}

	return summary
}
