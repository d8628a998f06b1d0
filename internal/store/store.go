// Package store provides the holdings store and its persistence backends.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cryptofolio/internal/models"
)

// Snapshotter persists the full holdings list. Every mutation triggers a
// full snapshot write; load is best-effort at startup.
type Snapshotter interface {
	Save(holdings []models.Holding) error
	Load() ([]models.Holding, error)
	Close() error
}

// Portfolio owns the holdings list, the cached market data and the cached
// insight text. All mutations go through its methods; readers get copies.
type Portfolio struct {
	mu         sync.RWMutex
	holdings   []models.Holding
	marketData models.MarketData
	insight    string

	snapshot Snapshotter
	logger   zerolog.Logger
}

// NewPortfolio creates a portfolio backed by the given snapshotter and loads
// any prior snapshot. A missing or unreadable snapshot yields an empty list.
func NewPortfolio(snapshot Snapshotter, logger zerolog.Logger) *Portfolio {
	p := &Portfolio{
		marketData: make(models.MarketData),
		snapshot:   snapshot,
		logger:     logger,
	}

	if snapshot != nil {
		holdings, err := snapshot.Load()
		if err != nil {
			logger.Warn().Err(err).Msg("Could not load holdings snapshot, starting empty")
		} else {
			p.holdings = holdings
		}
	}

	return p
}

// Add assigns a new unique id, stamps the creation time and appends the
// holding. Duplicate asset ids are allowed: each add is a separate lot.
func (p *Portfolio) Add(h models.Holding) models.Holding {
	p.mu.Lock()
	defer p.mu.Unlock()

	h.ID = uuid.NewString()
	h.CreatedAt = time.Now()
	p.holdings = append(p.holdings, h)
	p.persist()

	return h
}

// Remove deletes the holding with the given id. Removing an absent id is a
// no-op and returns false.
func (p *Portfolio) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, h := range p.holdings {
		if h.ID == id {
			p.holdings = append(p.holdings[:i], p.holdings[i+1:]...)
			p.persist()
			return true
		}
	}
	return false
}

// Clear empties the holdings list and drops the cached market data and
// insight text. Confirmation is the caller's responsibility.
func (p *Portfolio) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.holdings = nil
	p.marketData = make(models.MarketData)
	p.insight = ""
	p.persist()
}

// Holdings returns a copy of the holdings list in insertion order.
func (p *Portfolio) Holdings() []models.Holding {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.Holding, len(p.holdings))
	copy(out, p.holdings)
	return out
}

// AssetIDs returns the distinct asset identifiers across all holdings,
// in first-seen order.
func (p *Portfolio) AssetIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seen := make(map[string]bool, len(p.holdings))
	var ids []string
	for _, h := range p.holdings {
		if !seen[h.AssetID] {
			seen[h.AssetID] = true
			ids = append(ids, h.AssetID)
		}
	}
	return ids
}

// SetMarketData replaces the cached market data. Overlapping fetches are not
// ordered; the last resolved write wins and staleness self-corrects at the
// next refresh cycle.
func (p *Portfolio) SetMarketData(md models.MarketData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marketData = md.Clone()
}

// MarketData returns a copy of the cached market data.
func (p *Portfolio) MarketData() models.MarketData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.marketData.Clone()
}

// SetInsight caches the latest analysis text.
func (p *Portfolio) SetInsight(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.insight = text
}

// Insight returns the cached analysis text, if any.
func (p *Portfolio) Insight() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.insight
}

// Count returns the number of holdings.
func (p *Portfolio) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.holdings)
}

// persist writes a full snapshot. Callers must hold the write lock.
// Persistence failures are logged, never fatal.
func (p *Portfolio) persist() {
	if p.snapshot == nil {
		return
	}
	if err := p.snapshot.Save(p.holdings); err != nil {
		p.logger.Error().Err(err).Msg("Failed to persist holdings snapshot")
	}
}

// Close releases the underlying snapshot backend.
func (p *Portfolio) Close() error {
	if p.snapshot == nil {
		return nil
	}
	return p.snapshot.Close()
}
