package store

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"cryptofolio/internal/models"
)

// fakeSnapshot records saves so tests can run without a real backend.
type fakeSnapshot struct {
	saved   [][]models.Holding
	initial []models.Holding
	loadErr error
}

func (f *fakeSnapshot) Save(holdings []models.Holding) error {
	cp := make([]models.Holding, len(holdings))
	copy(cp, holdings)
	f.saved = append(f.saved, cp)
	return nil
}

func (f *fakeSnapshot) Load() ([]models.Holding, error) { return f.initial, f.loadErr }
func (f *fakeSnapshot) Close() error                    { return nil }

func newTestPortfolio(snap Snapshotter) *Portfolio {
	return NewPortfolio(snap, zerolog.Nop())
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	p := newTestPortfolio(nil)

	first := p.Add(models.Holding{AssetID: "bitcoin", Quantity: 1, AvgBuyPrice: 40000})
	second := p.Add(models.Holding{AssetID: "bitcoin", Quantity: 2, AvgBuyPrice: 42000})

	if first.ID == "" || second.ID == "" {
		t.Fatal("expected ids to be assigned on add")
	}
	if first.ID == second.ID {
		t.Errorf("ids must be unique, both are %s", first.ID)
	}
	if p.Count() != 2 {
		t.Errorf("Count = %d, want 2: same asset as two lots is allowed", p.Count())
	}
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	p := newTestPortfolio(nil)
	assets := []string{"bitcoin", "ethereum", "solana"}
	for _, a := range assets {
		p.Add(models.Holding{AssetID: a, Quantity: 1})
	}

	holdings := p.Holdings()
	for i, a := range assets {
		if holdings[i].AssetID != a {
			t.Errorf("holdings[%d].AssetID = %s, want %s", i, holdings[i].AssetID, a)
		}
	}
}

func TestRemoveAbsentIDIsNoop(t *testing.T) {
	p := newTestPortfolio(nil)
	p.Add(models.Holding{AssetID: "bitcoin", Quantity: 1})

	before := p.Holdings()
	if p.Remove("no-such-id") {
		t.Error("Remove of absent id returned true")
	}
	after := p.Holdings()

	if len(before) != len(after) {
		t.Errorf("holdings changed from %d to %d entries", len(before), len(after))
	}
}

func TestRemoveDeletesMatchingEntry(t *testing.T) {
	p := newTestPortfolio(nil)
	keep := p.Add(models.Holding{AssetID: "bitcoin", Quantity: 1})
	drop := p.Add(models.Holding{AssetID: "ethereum", Quantity: 2})

	if !p.Remove(drop.ID) {
		t.Fatal("Remove of existing id returned false")
	}

	holdings := p.Holdings()
	if len(holdings) != 1 || holdings[0].ID != keep.ID {
		t.Errorf("expected only %s to remain, got %v", keep.ID, holdings)
	}
}

func TestClearResetsEverything(t *testing.T) {
	p := newTestPortfolio(nil)
	p.Add(models.Holding{AssetID: "bitcoin", Quantity: 1})
	p.SetMarketData(models.MarketData{"bitcoin": 50000})
	p.SetInsight("looking good")

	p.Clear()

	if p.Count() != 0 {
		t.Errorf("Count = %d after clear, want 0", p.Count())
	}
	if len(p.MarketData()) != 0 {
		t.Error("market data survived clear")
	}
	if p.Insight() != "" {
		t.Error("insight text survived clear")
	}
}

func TestEveryMutationPersists(t *testing.T) {
	snap := &fakeSnapshot{}
	p := newTestPortfolio(snap)

	h := p.Add(models.Holding{AssetID: "bitcoin", Quantity: 1})
	p.Remove(h.ID)
	p.Clear()

	if len(snap.saved) != 3 {
		t.Errorf("got %d snapshot writes, want 3 (add, remove, clear)", len(snap.saved))
	}
}

func TestRemoveAbsentDoesNotPersist(t *testing.T) {
	snap := &fakeSnapshot{}
	p := newTestPortfolio(snap)

	p.Remove("no-such-id")
	if len(snap.saved) != 0 {
		t.Errorf("no-op remove wrote %d snapshots, want 0", len(snap.saved))
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	snap := &fakeSnapshot{loadErr: errors.New("corrupt snapshot")}
	p := newTestPortfolio(snap)

	if p.Count() != 0 {
		t.Errorf("Count = %d, want 0 when the snapshot is unreadable", p.Count())
	}
}

func TestLoadRestoresPriorHoldings(t *testing.T) {
	snap := &fakeSnapshot{initial: []models.Holding{
		{ID: "H1", AssetID: "bitcoin", Quantity: 1},
		{ID: "H2", AssetID: "ethereum", Quantity: 2},
	}}
	p := newTestPortfolio(snap)

	holdings := p.Holdings()
	if len(holdings) != 2 || holdings[0].ID != "H1" || holdings[1].ID != "H2" {
		t.Errorf("restored holdings = %v, want H1 then H2", holdings)
	}
}

func TestAssetIDsDeduplicates(t *testing.T) {
	p := newTestPortfolio(nil)
	p.Add(models.Holding{AssetID: "bitcoin", Quantity: 1})
	p.Add(models.Holding{AssetID: "ethereum", Quantity: 1})
	p.Add(models.Holding{AssetID: "bitcoin", Quantity: 2})

	ids := p.AssetIDs()
	if len(ids) != 2 || ids[0] != "bitcoin" || ids[1] != "ethereum" {
		t.Errorf("AssetIDs = %v, want [bitcoin ethereum]", ids)
	}
}

func TestMarketDataIsCopied(t *testing.T) {
	p := newTestPortfolio(nil)
	md := models.MarketData{"bitcoin": 50000}
	p.SetMarketData(md)

	// Mutating the caller's map must not leak into the store.
	md["bitcoin"] = 1

	if got := p.MarketData()["bitcoin"]; got != 50000 {
		t.Errorf("stored price = %v, want 50000", got)
	}
}
