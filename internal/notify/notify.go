// Package notify surfaces alert status transitions to the user.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"cryptofolio/internal/models"
)

// Notifier receives alert status transitions detected between refresh cycles.
type Notifier interface {
	AlertTransition(row models.EnrichedHolding, previous models.AlertStatus)
}

// TerminalNotifier prints alert transitions to a writer, used by watch mode.
type TerminalNotifier struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewTerminalNotifier creates a notifier writing to stdout.
func NewTerminalNotifier() *TerminalNotifier {
	return &TerminalNotifier{writer: os.Stdout}
}

// NewTerminalNotifierWithWriter creates a notifier writing to w.
func NewTerminalNotifierWithWriter(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{writer: w}
}

// AlertTransition prints a one-line notice for the status change.
func (n *TerminalNotifier) AlertTransition(row models.EnrichedHolding, previous models.AlertStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch row.Status {
	case models.StatusProfit:
		fmt.Fprintf(n.writer, "\a[ALERT] %s reached target %.4f (now %.4f)\n",
			row.AssetID, row.TargetPrice, row.CurrentPrice)
	case models.StatusStop:
		fmt.Fprintf(n.writer, "\a[ALERT] %s hit stop loss %.4f (now %.4f)\n",
			row.AssetID, row.StopLoss, row.CurrentPrice)
	default:
		fmt.Fprintf(n.writer, "[ALERT] %s back to %s (now %.4f, was %s)\n",
			row.AssetID, row.Status, row.CurrentPrice, previous)
	}
}
