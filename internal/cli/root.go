package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"weekly-backtester/internal/config"
	"weekly-backtester/internal/logging"
	"weekly-backtester/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  *store.SQLiteStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "backtester",
		Short: "Weekly swing-trading backtester",
		Long: `Backtester simulates a weekly swing-trading strategy on a leveraged
equity instrument, sweeping idle cash into a treasury instrument.

It replays daily (and optionally intraday) price history through a
deterministic per-week state machine and reports CAGR, Sharpe, drawdown
and trade statistics. Parameter sweeps run concurrently and tabulate
deltas against the baseline configuration.

Use 'backtester help <command>' for more information about a command.`,
		Version:       Version,
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
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/weekly-backtester)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newSweepCmd(app))
	rootCmd.AddCommand(newImportCmd(app))

	return rootCmd
}

// openStore lazily opens the SQLite bar store.
func (app *App) openStore() (*store.SQLiteStore, error) {
	if app.Store != nil {
		return app.Store, nil
	}
	s, err := store.NewSQLiteStore(app.Config.Data.DBPath)
	if err != nil {
		return nil, err
	}
	app.Store = s
	app.Logger.Debug().Str("path", app.Config.Data.DBPath).Msg("SQLite store opened")
	return s, nil
}
