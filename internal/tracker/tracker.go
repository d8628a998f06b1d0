// Package tracker drives the periodic price refresh cycle.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cryptofolio/internal/engine"
	"cryptofolio/internal/logging"
	"cryptofolio/internal/marketdata"
	"cryptofolio/internal/models"
	"cryptofolio/internal/notify"
	"cryptofolio/internal/store"
)

// DefaultInterval matches the original app's 60-second refresh period.
const DefaultInterval = 60 * time.Second

// Tracker fetches prices for all tracked assets and writes them to the
// portfolio store. Overlapping refreshes are not deduplicated; the last
// resolved write wins and staleness self-corrects on the next tick.
type Tracker struct {
	portfolio *store.Portfolio
	provider  marketdata.Provider
	notifier  notify.Notifier
	interval  time.Duration
	logger    zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New creates a tracker. A zero interval falls back to DefaultInterval;
// the notifier may be nil.
func New(portfolio *store.Portfolio, provider marketdata.Provider, notifier notify.Notifier, interval time.Duration, logger zerolog.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{
		portfolio: portfolio,
		provider:  provider,
		notifier:  notifier,
		interval:  interval,
		logger:    logger,
	}
}

// RefreshNow runs a single fetch-and-store cycle. Fetch failures degrade to
// whatever partial data came back; they are logged and never propagate.
func (t *Tracker) RefreshNow(ctx context.Context) models.MarketData {
	ids := t.portfolio.AssetIDs()
	if len(ids) == 0 {
		return models.MarketData{}
	}

	before := engine.Calculate(t.portfolio.Holdings(), t.portfolio.MarketData())

	start := time.Now()
	prices, err := t.provider.Prices(ctx, ids)
	if err != nil {
		t.logger.Warn().Err(err).Int("assets", len(ids)).Msg("Price fetch degraded")
	}
	t.portfolio.SetMarketData(prices)

	logging.LogRefresh(t.logger, len(ids), len(prices), time.Since(start))

	if t.notifier != nil {
		t.notifyTransitions(before)
	}

	return prices
}

// notifyTransitions reports holdings whose alert status changed since the
// previous market data.
func (t *Tracker) notifyTransitions(before []models.EnrichedHolding) {
	prev := make(map[string]models.AlertStatus, len(before))
	for _, row := range before {
		prev[row.ID] = row.Status
	}

	after := engine.Calculate(t.portfolio.Holdings(), t.portfolio.MarketData())
	for _, row := range after {
		old, ok := prev[row.ID]
		if !ok || old == row.Status {
			continue
		}
		if row.Status == models.StatusProfit || row.Status == models.StatusStop {
			logging.LogAlertTransition(t.logger, row.AssetID, string(row.Status), row.CurrentPrice)
			t.notifier.AlertTransition(row, old)
		}
	}
}

// Start launches the periodic refresh loop. It returns immediately; the
// first cycle fires after one interval. Calling Start on a running tracker
// is a no-op.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true

	go t.loop(loopCtx)
}

func (t *Tracker) loop(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.RefreshNow(ctx)
		}
	}
}

// Stop halts the refresh loop and waits for the current cycle to finish.
// No further cycles run after Stop returns. In-flight fetches are not
// cancelled mid-request; their result is simply the last write.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	cancel, done := t.cancel, t.done
	t.running = false
	t.mu.Unlock()

	cancel()
	<-done
}

// Interval returns the configured refresh period.
func (t *Tracker) Interval() time.Duration {
	return t.interval
}
