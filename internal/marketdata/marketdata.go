// Package marketdata provides live price lookup for tracked assets.
package marketdata

import (
	"context"

	"cryptofolio/internal/models"
)

// Provider returns current unit prices for a set of asset identifiers.
// Implementations may return a partial mapping: a missing id simply has no
// price yet. On failure they return whatever could be fetched (possibly an
// empty map) together with the error, so callers can log and proceed with
// degraded data instead of crashing.
type Provider interface {
	Prices(ctx context.Context, ids []string) (models.MarketData, error)
}
