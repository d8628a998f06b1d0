package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"cryptofolio/internal/engine"
	"cryptofolio/internal/insight"
	"cryptofolio/internal/logging"
)

// addInsightCommands adds the AI analysis command.
func addInsightCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Request an AI-written portfolio analysis",
		Long: `Send the current holdings, valuations and alert statuses to the
configured text service and print its analysis.

Requires an OpenAI API key in credentials.toml or OPENAI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			requester, err := app.requireInsight()
			if err != nil {
				return err
			}

			refresh, _ := cmd.Flags().GetBool("refresh")

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			if refresh {
				app.Tracker.RefreshNow(ctx)
			}

			rows := engine.Calculate(app.Portfolio.Holdings(), app.Portfolio.MarketData())

			output.Info("Analyzing %d holding(s)...", len(rows))

			start := time.Now()
			text, err := requester.Analyze(ctx, rows)
			logging.LogAnalysis(app.Logger, len(rows), time.Since(start), err)

			if err != nil {
				switch {
				case errors.Is(err, insight.ErrEmptyPortfolio):
					output.Println("Nothing to analyze: the portfolio is empty.")
					return nil
				case errors.Is(err, insight.ErrAnalysisInFlight):
					output.Warning("An analysis is already in progress.")
					return nil
				default:
					output.Error("Analysis unavailable: %v", err)
					return nil
				}
			}

			app.Portfolio.SetInsight(text)

			if output.IsJSON() {
				return output.JSON(map[string]string{"analysis": text})
			}
			output.Println()
			output.Println(text)
			return nil
		},
	}

	cmd.Flags().Bool("refresh", true, "fetch current prices before analyzing")
	return cmd
}
