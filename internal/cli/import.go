package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"weekly-backtester/internal/store"
)

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <symbol> <csv-file>",
		Short: "Import daily bars from a CSV file into the bar store",
		Long: `Import daily OHLC bars for a symbol from a CSV file with a
date,open,high,low,close header. Existing bars for the same dates are
overwritten.`,
		Example: `  backtester import TQQQ tqqq_daily.csv
  backtester import BIL bil_daily.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			path := args[1]

			bars, err := store.LoadBarsCSV(path)
			if err != nil {
				output.Error("Failed to load %s: %v", path, err)
				return err
			}

			dataStore, err := app.openStore()
			if err != nil {
				output.Error("Failed to open bar store: %v", err)
				return err
			}
			if err := dataStore.SaveBars(ctx, symbol, bars); err != nil {
				output.Error("Failed to save bars: %v", err)
				return err
			}

			total, err := dataStore.BarCount(ctx, symbol)
			if err != nil {
				output.Error("Failed to count bars: %v", err)
				return err
			}

			app.Logger.Info().
				Str("symbol", symbol).
				Int("imported", len(bars)).
				Int("total", total).
				Msg("Bars imported")

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":   symbol,
					"imported": len(bars),
					"total":    total,
				})
			}
			output.Printf("Imported %d bars for %s (%d total in store)\n", len(bars), symbol, total)
			return nil
		},
	}
	return cmd
}
