package store

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"cryptofolio/internal/models"
)

var reflectTypeHolding = reflect.TypeOf(models.Holding{})

func holdingListGen() gopter.Gen {
	holdingGen := gen.Struct(reflectTypeHolding, map[string]gopter.Gen{
		"ID":          gen.Identifier(),
		"AssetID":     gen.Identifier(),
		"Quantity":    gen.Float64Range(0.000001, 1000),
		"AvgBuyPrice": gen.Float64Range(0, 100000),
		"TargetPrice": gen.Float64Range(0, 200000),
		"StopLoss":    gen.Float64Range(0, 200000),
	})
	return gen.SliceOf(holdingGen)
}

// equalIgnoringTime compares lists field-for-field except CreatedAt, which
// the generators leave zero and the backends normalize differently.
func equalIgnoringTime(a, b []models.Holding) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		x.CreatedAt, y.CreatedAt = time.Time{}, time.Time{}
		if x != y {
			return false
		}
	}
	return true
}

// Property: saving then loading any holdings list through the file backend
// yields an equal list.
func TestProperty_FileSnapshotRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	snap, err := NewFileSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("creating file snapshot: %v", err)
	}

	properties.Property("file snapshot round-trips", prop.ForAll(
		func(holdings []models.Holding) bool {
			if err := snap.Save(holdings); err != nil {
				t.Logf("save failed: %v", err)
				return false
			}
			loaded, err := snap.Load()
			if err != nil {
				t.Logf("load failed: %v", err)
				return false
			}
			return equalIgnoringTime(holdings, loaded)
		},
		holdingListGen(),
	))

	properties.TestingRun(t)
}

// Property: the SQLite backend round-trips any holdings list, preserving
// insertion order. Requires distinct ids, which the store guarantees.
func TestProperty_SQLiteSnapshotRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	snap, err := NewSQLiteSnapshot(filepath.Join(t.TempDir(), "cryptofolio.db"))
	if err != nil {
		t.Fatalf("creating sqlite snapshot: %v", err)
	}
	defer snap.Close()

	properties.Property("sqlite snapshot round-trips", prop.ForAll(
		func(holdings []models.Holding) bool {
			holdings = dedupeByID(holdings)
			if err := snap.Save(holdings); err != nil {
				t.Logf("save failed: %v", err)
				return false
			}
			loaded, err := snap.Load()
			if err != nil {
				t.Logf("load failed: %v", err)
				return false
			}
			return equalIgnoringTime(holdings, loaded)
		},
		holdingListGen(),
	))

	properties.TestingRun(t)
}

func dedupeByID(holdings []models.Holding) []models.Holding {
	seen := make(map[string]bool, len(holdings))
	out := holdings[:0]
	for _, h := range holdings {
		if !seen[h.ID] {
			seen[h.ID] = true
			out = append(out, h)
		}
	}
	return out
}

func TestFileSnapshotMissingFile(t *testing.T) {
	snap, err := NewFileSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("creating file snapshot: %v", err)
	}

	holdings, err := snap.Load()
	if err != nil {
		t.Errorf("missing snapshot must not be an error, got %v", err)
	}
	if len(holdings) != 0 {
		t.Errorf("expected empty list, got %d holdings", len(holdings))
	}
}
