package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cryptofolio/internal/config"
	"cryptofolio/internal/insight"
	"cryptofolio/internal/logging"
	"cryptofolio/internal/marketdata"
	"cryptofolio/internal/notify"
	"cryptofolio/internal/store"
	"cryptofolio/internal/tracker"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Portfolio *store.Portfolio
	Provider  marketdata.Provider
	Requester *insight.Requester
	Tracker   *tracker.Tracker
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	snapshot, err := newSnapshotter(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize persistence, holdings will not survive restarts")
	}
	app.Portfolio = store.NewPortfolio(snapshot, logger)

	app.Provider = marketdata.NewCoinGeckoClient(marketdata.CoinGeckoConfig{
		BaseURL: cfg.Market.BaseURL,
		APIKey:  cfg.Credentials.CoinGecko.APIKey,
		Timeout: cfg.Market.RequestTimeout,
	})

	if cfg.HasInsight() {
		client := insight.NewOpenAIClient(cfg.Credentials.OpenAI.APIKey, cfg.Insight.Model)
		app.Requester = insight.NewRequester(client)
		logger.Debug().Str("model", cfg.Insight.Model).Msg("Insight client initialized")
	}

	app.Tracker = tracker.New(app.Portfolio, app.Provider, notify.NewTerminalNotifier(),
		cfg.Market.RefreshInterval, logger)

	rootCmd := &cobra.Command{
		Use:   "cryptofolio",
		Short: "Crypto portfolio tracker with price alerts and AI analysis",
		Long: `cryptofolio tracks your crypto holdings against live market prices.

Add holdings with a cost basis and optional target/stop thresholds, refresh
prices from CoinGecko manually or on a fixed interval, and request an
AI-written portfolio analysis.

Use 'cryptofolio help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/cryptofolio)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addHoldingsCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)
	addInsightCommands(rootCmd, app)
	addCoreCommands(rootCmd, app)

	return rootCmd
}

func newSnapshotter(cfg *config.Config) (store.Snapshotter, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return store.NewSQLiteSnapshot(filepath.Join(cfg.Storage.Path, "cryptofolio.db"))
	default:
		return store.NewFileSnapshot(cfg.Storage.Path)
	}
}

// addCoreCommands adds version and config commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("cryptofolio v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Market")
			output.Printf("  Endpoint:         %s\n", app.Config.Market.BaseURL)
			output.Printf("  Refresh interval: %s\n", app.Config.Market.RefreshInterval)
			output.Printf("  Request timeout:  %s\n", app.Config.Market.RequestTimeout)
			output.Println()
			output.Bold("Storage")
			output.Printf("  Backend:          %s\n", app.Config.Storage.Backend)
			output.Printf("  Path:             %s\n", app.Config.Storage.Path)
			output.Println()
			output.Bold("Insight")
			output.Printf("  Model:            %s\n", app.Config.Insight.Model)
			output.Printf("  Configured:       %v\n", app.Config.HasInsight())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

// requireInsight returns the requester or a friendly error.
func (app *App) requireInsight() (*insight.Requester, error) {
	if app.Requester == nil {
		return nil, fmt.Errorf("insight service not configured: set openai api_key in credentials.toml or OPENAI_API_KEY")
	}
	return app.Requester, nil
}
