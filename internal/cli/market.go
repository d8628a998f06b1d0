package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cryptofolio/internal/engine"
	"cryptofolio/internal/notify"
	"cryptofolio/internal/tracker"
	"cryptofolio/pkg/utils"
)

// addMarketCommands adds price refresh and dashboard commands.
func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRefreshCmd(app))
	rootCmd.AddCommand(newSummaryCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
}

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch current prices and show the portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Portfolio.Count() == 0 {
				output.Println("No holdings to refresh.")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			start := time.Now()
			prices := app.Tracker.RefreshNow(ctx)
			rows := engine.Calculate(app.Portfolio.Holdings(), app.Portfolio.MarketData())

			if output.IsJSON() {
				return output.JSON(rows)
			}

			if len(prices) == 0 {
				output.Warning("Price service unavailable, showing last known data")
			} else {
				output.Dim("Fetched %d prices in %s", len(prices), time.Since(start).Round(time.Millisecond))
			}
			output.Println()
			renderHoldings(output, rows)
			return nil
		},
	}
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show portfolio aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			rows := engine.Calculate(app.Portfolio.Holdings(), app.Portfolio.MarketData())
			summary := engine.Summarize(rows)

			if output.IsJSON() {
				return output.JSON(summary)
			}

			output.Bold("Portfolio Summary")
			output.Printf("  Holdings:   %d\n", summary.HoldingCount)
			output.Printf("  Invested:   %s\n", utils.FormatUSD(summary.TotalInvested))
			output.Printf("  Value:      %s\n", utils.FormatUSD(summary.TotalValue))
			output.Printf("  P/L:        %s (%s)\n",
				output.ColoredString(output.PnLColor(summary.TotalPnL), utils.FormatPnL(summary.TotalPnL)),
				output.ColoredString(output.PnLColor(summary.TotalPnLPercent), utils.FormatPercent(summary.TotalPnLPercent)))
			if summary.ProfitAlerts > 0 {
				output.Success("  %d holding(s) at target", summary.ProfitAlerts)
			}
			if summary.StopAlerts > 0 {
				output.Error("  %d holding(s) below stop loss", summary.StopAlerts)
			}
			return nil
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Track the portfolio with periodic refreshes",
		Long: `Fetch prices immediately, then keep refreshing on the configured
interval until interrupted. Alert transitions are announced as they happen.`,
		Example: `  cryptofolio watch
  cryptofolio watch --interval 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Portfolio.Count() == 0 {
				output.Println("No holdings to watch. Use 'cryptofolio add' first.")
				return nil
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			watchTracker := app.Tracker
			if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
				watchTracker = tracker.New(app.Portfolio, app.Provider,
					notify.NewTerminalNotifier(), interval, app.Logger)
			}

			// Startup fetch, then the periodic loop.
			watchTracker.RefreshNow(ctx)
			rows := engine.Calculate(app.Portfolio.Holdings(), app.Portfolio.MarketData())
			renderHoldings(output, rows)
			output.Println()
			output.Dim("Refreshing every %s. Press Ctrl-C to stop.", watchTracker.Interval())

			watchTracker.Start(ctx)
			defer watchTracker.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sig)

			render := time.NewTicker(watchTracker.Interval())
			defer render.Stop()

			for {
				select {
				case <-sig:
					output.Println()
					output.Dim("Stopped.")
					return nil
				case <-ctx.Done():
					return nil
				case <-render.C:
					rows := engine.Calculate(app.Portfolio.Holdings(), app.Portfolio.MarketData())
					output.Println()
					renderHoldings(output, rows)
				}
			}
		},
	}

	cmd.Flags().Duration("interval", 0, "override the refresh interval for this session")
	return cmd
}
