package insight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cryptofolio/internal/models"
)

// blockingClient holds every Complete call until released.
type blockingClient struct {
	started chan struct{}
	release chan struct{}
	reply   string
	err     error
}

func (c *blockingClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.release != nil {
		<-c.release
	}
	return c.reply, c.err
}

func sampleRows() []models.EnrichedHolding {
	return []models.EnrichedHolding{
		{
			Holding:      models.Holding{ID: "H1", AssetID: "bitcoin", Quantity: 1, AvgBuyPrice: 40000},
			CurrentPrice: 50000, TotalInvested: 40000, CurrentValue: 50000, PnL: 10000, PnLPercent: 25,
			Status: models.StatusHold,
		},
	}
}

func TestAnalyzeReturnsText(t *testing.T) {
	r := NewRequester(&blockingClient{reply: "portfolio looks balanced"})

	text, err := r.Analyze(context.Background(), sampleRows())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if text != "portfolio looks balanced" {
		t.Errorf("text = %q", text)
	}
}

func TestAnalyzeEmptyPortfolio(t *testing.T) {
	r := NewRequester(&blockingClient{reply: "unused"})

	_, err := r.Analyze(context.Background(), nil)
	if !errors.Is(err, ErrEmptyPortfolio) {
		t.Errorf("err = %v, want ErrEmptyPortfolio", err)
	}
}

func TestAnalyzeSingleFlight(t *testing.T) {
	client := &blockingClient{
		started: make(chan struct{}),
		release: make(chan struct{}),
		reply:   "done",
	}
	r := NewRequester(client)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Analyze(context.Background(), sampleRows())
	}()

	<-client.started

	// Second trigger while the first is outstanding must be refused.
	_, err := r.Analyze(context.Background(), sampleRows())
	if !errors.Is(err, ErrAnalysisInFlight) {
		t.Errorf("err = %v, want ErrAnalysisInFlight", err)
	}

	close(client.release)
	wg.Wait()

	// After completion a new trigger is allowed again.
	client.started = nil
	client.release = nil
	if _, err := r.Analyze(context.Background(), sampleRows()); err != nil {
		t.Errorf("Analyze after completion returned error: %v", err)
	}
}

func TestAnalyzeResetsFlagOnFailure(t *testing.T) {
	client := &blockingClient{err: errors.New("service down")}
	r := NewRequester(client)

	if _, err := r.Analyze(context.Background(), sampleRows()); err == nil {
		t.Fatal("expected failure from client")
	}

	// The in-flight flag must not stick after a failure.
	client.err = nil
	client.reply = "recovered"
	text, err := r.Analyze(context.Background(), sampleRows())
	if err != nil {
		t.Fatalf("Analyze after failure returned error: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q, want recovered", text)
	}
}

func TestBuildPromptIncludesRows(t *testing.T) {
	prompt := BuildPrompt(sampleRows())

	for _, want := range []string{"bitcoin", "HOLD", "1 holdings"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
