package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"weekly-backtester/internal/backtest"
	"weekly-backtester/internal/metrics"
	"weekly-backtester/internal/models"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single backtest with the configured parameters",
		Long: `Run one backtest over the configured horizon and print the derived
metrics. Strategy parameters come from the config file's strategy section.`,
		Example: `  backtester run
  backtester run --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			params, err := app.Config.ParameterSet()
			if err != nil {
				output.Error("Invalid strategy parameters: %v", err)
				return err
			}
			runCfg, err := runConfig(app)
			if err != nil {
				output.Error("Invalid run configuration: %v", err)
				return err
			}

			dataStore, err := app.openStore()
			if err != nil {
				output.Error("Failed to open bar store: %v", err)
				return err
			}

			engine := backtest.New(dataStore,
				backtest.WithIntraday(dataStore),
				backtest.WithLogger(app.Logger),
			)

			start := time.Now()
			result, err := engine.Run(ctx, params, runCfg)
			if err != nil {
				output.Error("Backtest failed: %v", err)
				return err
			}
			summary := metrics.Compute(result)
			app.Logger.Info().
				Dur("elapsed", time.Since(start)).
				Int("trades", summary.TotalTrades).
				Msg("Backtest finished")

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"params":        params.String(),
					"summary":       summary,
					"skipped_weeks": result.SkippedWeeks,
				})
			}
			displaySummary(output, params, summary)
			return nil
		},
	}
	return cmd
}

func runConfig(app *App) (backtest.RunConfig, error) {
	start, end, err := app.Config.Horizon()
	if err != nil {
		return backtest.RunConfig{}, err
	}
	return backtest.RunConfig{
		TradedSymbol:   app.Config.Data.TradedSymbol,
		TreasurySymbol: app.Config.Data.TreasurySymbol,
		Start:          start,
		End:            end,
		InitialCapital: app.Config.Backtest.InitialCapital,
	}, nil
}

func displaySummary(output *Output, params models.ParameterSet, s metrics.Summary) {
	output.Bold("%s\n", params.String())
	output.Println()

	output.Printf("  CAGR           %s\n", output.Colorize(output.PnLColor(s.CAGR), Percent(s.CAGR)))
	output.Printf("  Sharpe         %s\n", Ratio(s.Sharpe))
	output.Printf("  Max drawdown   %s\n", output.Colorize(ColorRed, Percent(s.MaxDrawdown)))
	output.Printf("  Total return   %s\n", Percent(s.TotalReturn))
	output.Printf("  Final equity   %.2f\n", s.FinalEquity)
	output.Println()
	output.Printf("  Trades         %d (%s/year)\n", s.TotalTrades, Ratio(s.TradesPerYear))
	output.Printf("  Win rate       %s (%d W / %d L)\n", Percent(s.WinRate), s.Winners, s.Losers)
	output.Printf("  Avg trade      %s  best %s  worst %s\n",
		Percent(s.AvgReturnPct), Percent(s.BestTradePct), Percent(s.WorstTradePct))
	output.Printf("  Exposure       %s\n", Percent(s.ExposurePct))
	output.Println()

	output.Printf("  Exits:")
	for _, reason := range models.ExitReasons {
		if n := s.ExitReasons[reason]; n > 0 {
			output.Printf(" %s=%d", reason, n)
		}
	}
	output.Println()
}
