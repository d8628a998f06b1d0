package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"cryptofolio/internal/models"
	"cryptofolio/internal/store"
)

func newTestOutput(buf *bytes.Buffer) *Output {
	return &Output{writer: buf, colorEnabled: false}
}

func TestTableRenderAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	output := newTestOutput(&buf)

	table := NewTable(output, "Asset", "Value")
	table.AddRow("bitcoin", "$100.00")
	table.AddRow("eth", "$2.00")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header, separator and 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[2], "bitcoin") {
		t.Errorf("row order not preserved: %q", lines[2])
	}
	// Cells are padded to the widest value in the column.
	if !strings.Contains(lines[3], "eth     ") {
		t.Errorf("expected padded cell in %q", lines[3])
	}
}

func TestStatusTagWithoutColor(t *testing.T) {
	output := newTestOutput(&bytes.Buffer{})
	if got := output.StatusTag(models.StatusProfit); got != "PROFIT" {
		t.Errorf("StatusTag = %q, want plain PROFIT without color", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID should leave short ids alone, got %q", got)
	}
}

func TestResolveIDPrefix(t *testing.T) {
	app := &App{Portfolio: store.NewPortfolio(nil, zerolog.Nop())}
	first := app.Portfolio.Add(models.Holding{AssetID: "bitcoin", Quantity: 1})
	app.Portfolio.Add(models.Holding{AssetID: "ethereum", Quantity: 1})

	id, err := resolveID(app, first.ID[:8])
	if err != nil {
		t.Fatalf("resolveID returned error: %v", err)
	}
	if id != first.ID {
		t.Errorf("resolved %q, want %q", id, first.ID)
	}

	if id, _ := resolveID(app, "zzzz"); id != "" {
		t.Errorf("unknown prefix resolved to %q", id)
	}
}

func TestStripANSI(t *testing.T) {
	colored := ColorGreen + "PROFIT" + ColorReset
	if got := stripANSI(colored); got != "PROFIT" {
		t.Errorf("stripANSI = %q", got)
	}
}
