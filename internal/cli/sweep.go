package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"weekly-backtester/internal/backtest"
	apperrors "weekly-backtester/internal/errors"
	"weekly-backtester/internal/models"
	"weekly-backtester/internal/sweep"
)

func newSweepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep --param <name> --values <v1,v2,...>",
		Short: "Sweep one parameter across values and compare against baseline",
		Long: `Run the configured baseline plus one backtest per value of a single
parameter, in parallel, and tabulate CAGR/Sharpe/MaxDD deltas.

Controlled single-parameter sweeps are the source of truth for attribution;
each run gets a fresh parameter set and an independent result.

Sweepable parameters: tp_a, tp_c, stop (percent values), weakness (true/false),
entry_day, exit_day (weekday names), entry_time, exit_time (open/close/HH:MM),
reentry_cooldown (none/0/1/2), weekend_hold (never/always/profitable/sma20/sma50).`,
		Example: `  backtester sweep --param tp_c --values 2.5,4.0,6.0
  backtester sweep --param entry_day --values monday,tuesday,wednesday
  backtester sweep --param weekend_hold --values never,always,profitable,sma20,sma50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			param, _ := cmd.Flags().GetString("param")
			valuesFlag, _ := cmd.Flags().GetString("values")
			workers, _ := cmd.Flags().GetInt("workers")
			if param == "" || valuesFlag == "" {
				output.Error("--param and --values are required")
				return fmt.Errorf("missing sweep flags")
			}

			baseline, err := app.Config.ParameterSet()
			if err != nil {
				output.Error("Invalid strategy parameters: %v", err)
				return err
			}
			runCfg, err := runConfig(app)
			if err != nil {
				output.Error("Invalid run configuration: %v", err)
				return err
			}

			var variants []sweep.Variant
			for _, raw := range strings.Split(valuesFlag, ",") {
				raw = strings.TrimSpace(raw)
				params, err := overrideParameter(baseline, param, raw)
				if err != nil {
					output.Error("Bad value %q for %s: %v", raw, param, err)
					return err
				}
				variants = append(variants, sweep.Variant{
					Name:   fmt.Sprintf("%s=%s", param, raw),
					Params: params,
				})
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
			runner := sweep.NewRunner(engine, workers, app.Logger)

			report, err := runner.Run(ctx, runCfg, baseline, variants)
			if err != nil {
				output.Error("Sweep failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			displayReport(output, report)
			return nil
		},
	}

	cmd.Flags().String("param", "", "parameter to sweep")
	cmd.Flags().String("values", "", "comma-separated values")
	cmd.Flags().IntP("workers", "w", 0, "parallel runs (default: number of CPUs)")

	return cmd
}

// overrideParameter returns a fresh, validated copy of base with one
// parameter replaced. Each sweep trial gets its own immutable set.
func overrideParameter(base models.ParameterSet, param, value string) (models.ParameterSet, error) {
	p := base
	switch strings.ToLower(param) {
	case "tp_a":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p, err
		}
		p.TargetA = v / 100
	case "tp_c":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p, err
		}
		p.TargetC = v / 100
	case "stop":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p, err
		}
		p.Stop = v / 100
	case "weakness":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return p, err
		}
		p.WeaknessEnabled = v
	case "entry_day":
		d, err := parseWeekdayFlag(value)
		if err != nil {
			return p, err
		}
		p.EntryDay = d
	case "exit_day":
		d, err := parseWeekdayFlag(value)
		if err != nil {
			return p, err
		}
		p.ExitDay = d
	case "entry_time":
		p.EntryTime = value
	case "exit_time":
		p.ExitTime = value
	case "reentry_cooldown":
		if strings.EqualFold(value, "none") {
			p.ReentryCooldown = models.CooldownNone
		} else {
			v, err := strconv.Atoi(value)
			if err != nil {
				return p, err
			}
			p.ReentryCooldown = v
		}
	case "weekend_hold":
		p.WeekendHold = models.WeekendHoldMode(value)
	default:
		return p, apperrors.NewConfigurationError("param", param, "unknown sweepable parameter")
	}
	return models.NewParameterSet(p)
}

func parseWeekdayFlag(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func displayReport(output *Output, report *sweep.Report) {
	output.Bold("%-28s %8s %8s %8s %7s %8s %8s %10s\n",
		"variant", "CAGR", "Sharpe", "MaxDD", "trades", "tr/yr", "win", "ΔCAGR pp")

	printRow := func(row sweep.Row, delta string) {
		if row.Err != nil {
			output.Printf("%-28s %s\n", row.Name, output.Colorize(ColorRed, row.Err.Error()))
			return
		}
		s := row.Summary
		output.Printf("%-28s %8s %8s %8s %7d %8s %8s %10s\n",
			row.Name,
			Percent(s.CAGR), Ratio(s.Sharpe), Percent(s.MaxDrawdown),
			s.TotalTrades, Ratio(s.TradesPerYear), Percent(s.WinRate),
			delta)
	}

	printRow(report.Baseline, "-")
	for _, row := range report.Rows {
		delta := "n/a"
		if row.Err == nil && !isNaN(row.DeltaCAGR) {
			delta = fmt.Sprintf("%+.1f", row.DeltaCAGR)
		}
		printRow(row, delta)
	}
}

func isNaN(v float64) bool {
	return v != v
}
