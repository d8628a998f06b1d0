// Package insight requests natural-language portfolio analysis from an LLM.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cryptofolio/internal/engine"
	"cryptofolio/internal/models"
)

var (
	// ErrEmptyPortfolio is returned when there are no rows to analyze.
	ErrEmptyPortfolio = errors.New("no holdings to analyze")
	// ErrAnalysisInFlight is returned while a previous request is outstanding.
	ErrAnalysisInFlight = errors.New("analysis already in progress")
)

// LLMClient completes a prompt with a text-generation service.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Requester turns enriched portfolio rows into a prose analysis.
// Requests are single-flight: a trigger while one is outstanding is refused.
type Requester struct {
	client LLMClient

	mu       sync.Mutex
	inFlight bool
}

// NewRequester creates a requester backed by the given LLM client.
func NewRequester(client LLMClient) *Requester {
	return &Requester{client: client}
}

// Analyze sends the enriched rows to the text service and returns its prose
// summary. The in-flight flag is always released, also on failure.
func (r *Requester) Analyze(ctx context.Context, rows []models.EnrichedHolding) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyPortfolio
	}

	r.mu.Lock()
	if r.inFlight {
		r.mu.Unlock()
		return "", ErrAnalysisInFlight
	}
	r.inFlight = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inFlight = false
		r.mu.Unlock()
	}()

	text, err := r.client.Complete(ctx, BuildPrompt(rows))
	if err != nil {
		return "", fmt.Errorf("requesting analysis: %w", err)
	}
	return text, nil
}

// BuildPrompt renders the rows and portfolio totals into the analysis prompt.
func BuildPrompt(rows []models.EnrichedHolding) string {
	summary := engine.Summarize(rows)

	var b strings.Builder
	b.WriteString("You are a crypto portfolio analyst. Analyze the following portfolio ")
	b.WriteString("and give a concise assessment: overall health, notable winners and ")
	b.WriteString("losers, concentration risk, and which alert statuses deserve attention. ")
	b.WriteString("Reply in plain prose, no markdown tables.\n\n")

	fmt.Fprintf(&b, "Portfolio: %d holdings, invested $%.2f, current value $%.2f, P/L %.2f%%\n\n",
		summary.HoldingCount, summary.TotalInvested, summary.TotalValue, summary.TotalPnLPercent)

	b.WriteString("Holdings:\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s: qty %g, avg buy $%.4f, current $%.4f, value $%.2f, P/L %.2f%%, status %s\n",
			row.AssetID, row.Quantity, row.AvgBuyPrice, row.CurrentPrice, row.CurrentValue, row.PnLPercent, row.Status)
	}

	return b.String()
}
