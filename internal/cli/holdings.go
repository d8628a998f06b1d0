package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cryptofolio/internal/engine"
	"cryptofolio/internal/models"
	"cryptofolio/pkg/utils"
)

// addHoldingsCommands adds the holdings management commands.
func addHoldingsCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAddCmd(app))
	rootCmd.AddCommand(newRemoveCmd(app))
	rootCmd.AddCommand(newClearCmd(app))
	rootCmd.AddCommand(newListCmd(app))
}

func newAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <asset-id> <quantity> <avg-buy-price>",
		Short: "Add a holding",
		Long: `Add a holding to the portfolio.

The asset id is the market-data identifier (e.g. "bitcoin", "ethereum").
Adding the same asset twice creates a second lot with its own id.`,
		Example: `  cryptofolio add bitcoin 0.5 42000
  cryptofolio add ethereum 10 2800 --target 3500 --stop 2200`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			assetID := strings.ToLower(strings.TrimSpace(args[0]))
			if assetID == "" {
				return fmt.Errorf("asset id must not be empty")
			}

			quantity, err := strconv.ParseFloat(args[1], 64)
			if err != nil || quantity <= 0 {
				return fmt.Errorf("quantity must be a positive number, got %q", args[1])
			}

			avgPrice, err := strconv.ParseFloat(args[2], 64)
			if err != nil || avgPrice < 0 {
				return fmt.Errorf("average buy price must be a non-negative number, got %q", args[2])
			}

			target, _ := cmd.Flags().GetFloat64("target")
			stop, _ := cmd.Flags().GetFloat64("stop")
			if target < 0 || stop < 0 {
				return fmt.Errorf("thresholds must be non-negative, use 0 to leave unset")
			}

			h := app.Portfolio.Add(models.Holding{
				AssetID:     assetID,
				Quantity:    quantity,
				AvgBuyPrice: avgPrice,
				TargetPrice: target,
				StopLoss:    stop,
			})

			if output.IsJSON() {
				return output.JSON(h)
			}
			output.Success("Added %s %s (id %s)", utils.FormatQuantity(quantity), assetID, h.ID)
			return nil
		},
	}

	cmd.Flags().Float64("target", 0, "target price alert threshold (0 = unset)")
	cmd.Flags().Float64("stop", 0, "stop loss alert threshold (0 = unset)")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a holding by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			id, err := resolveID(app, args[0])
			if err != nil {
				return err
			}
			if id == "" || !app.Portfolio.Remove(id) {
				output.Warning("No holding with id %s", args[0])
				return nil
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"removed": id})
			}
			output.Success("Removed holding %s", id)
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all holdings",
		Long:  "Remove all holdings and drop cached market data. Asks for confirmation unless --yes is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			count := app.Portfolio.Count()
			if count == 0 {
				output.Println("Portfolio is already empty.")
				return nil
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				output.Printf("Remove all %d holdings? This cannot be undone. [y/N] ", count)
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					output.Println("Aborted.")
					return nil
				}
			}

			app.Portfolio.Clear()
			output.Success("Portfolio cleared")
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List holdings with live valuation",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			rows := engine.Calculate(app.Portfolio.Holdings(), app.Portfolio.MarketData())
			if output.IsJSON() {
				return output.JSON(rows)
			}

			if len(rows) == 0 {
				output.Println("No holdings. Use 'cryptofolio add' to start tracking.")
				return nil
			}

			renderHoldings(output, rows)
			output.Println()
			output.Dim("Prices refresh with 'cryptofolio refresh' or in watch mode.")
			return nil
		},
	}
}

// renderHoldings prints the enriched rows as a table.
func renderHoldings(output *Output, rows []models.EnrichedHolding) {
	table := NewTable(output, "ID", "Asset", "Qty", "Avg Buy", "Price", "Value", "P/L %", "Status")
	for _, row := range rows {
		pnlColor := output.PnLColor(row.PnLPercent)
		table.AddRow(
			shortID(row.ID),
			row.AssetID,
			utils.FormatQuantity(row.Quantity),
			utils.FormatPrice(row.AvgBuyPrice),
			utils.FormatPrice(row.CurrentPrice),
			utils.FormatUSD(row.CurrentValue),
			output.ColoredString(pnlColor, utils.FormatPercent(row.PnLPercent)),
			output.StatusTag(row.Status),
		)
	}
	table.Render()
}

// shortID truncates a uuid for display; the full id shows in JSON mode.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID accepts a full holding id or a unique prefix of one.
func resolveID(app *App, arg string) (string, error) {
	var match string
	for _, h := range app.Portfolio.Holdings() {
		if h.ID == arg {
			return h.ID, nil
		}
		if strings.HasPrefix(h.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", arg)
			}
			match = h.ID
		}
	}
	return match, nil
}
