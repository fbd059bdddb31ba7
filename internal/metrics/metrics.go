// Package metrics derives performance statistics from a finished run.
// Every value is a pure function of the equity curve and trade log, so a
// stored RunResult reproduces its metrics exactly.
package metrics

import (
	"math"

	"weekly-backtester/internal/models"
)

// daysPerYear uses the astronomical convention for CAGR annualization.
const daysPerYear = 365.25

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// Summary holds the derived metrics of one backtest run. Degenerate values
// (zero-length horizon, zero return variance, empty trade log) are NaN, never
// silently coerced to zero; use Defined before formatting.
type Summary struct {
	CAGR          float64
	Sharpe        float64
	MaxDrawdown   float64 // negative fraction, peak to trough
	TotalTrades   int
	TradesPerYear float64
	WinRate       float64
	Winners       int
	Losers        int
	AvgReturnPct  float64
	BestTradePct  float64
	WorstTradePct float64
	ExposurePct   float64 // fraction of trading days with an open position
	FinalEquity   float64
	TotalReturn   float64 // final/initial - 1
	ExitReasons   map[models.ExitReason]int
}

// Defined reports whether a metric value carries information.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// Compute derives the summary metrics for a run.
func Compute(result *models.RunResult) Summary {
	s := Summary{
		CAGR:          math.NaN(),
		Sharpe:        math.NaN(),
		WinRate:       math.NaN(),
		AvgReturnPct:  math.NaN(),
		BestTradePct:  math.NaN(),
		WorstTradePct: math.NaN(),
		TradesPerYear: math.NaN(),
		FinalEquity:   result.FinalEquity,
		ExitReasons:   make(map[models.ExitReason]int),
	}

	curve := result.Curve
	trades := result.Trades

	s.TotalTrades = len(trades)
	for _, t := range trades {
		s.ExitReasons[t.ExitReason]++
		if t.Won() {
			s.Winners++
		} else {
			s.Losers++
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Winners) / float64(s.TotalTrades)

		sum, best, worst := 0.0, trades[0].ReturnPct, trades[0].ReturnPct
		for _, t := range trades {
			sum += t.ReturnPct
			if t.ReturnPct > best {
				best = t.ReturnPct
			}
			if t.ReturnPct < worst {
				worst = t.ReturnPct
			}
		}
		s.AvgReturnPct = sum / float64(s.TotalTrades)
		s.BestTradePct = best
		s.WorstTradePct = worst
	}

	if result.InitialCapital > 0 {
		s.TotalReturn = result.FinalEquity/result.InitialCapital - 1
	}

	if len(curve) > 1 {
		spanDays := curve[len(curve)-1].Date.Sub(curve[0].Date).Hours() / 24
		if spanDays > 0 && result.InitialCapital > 0 {
			s.CAGR = math.Pow(result.FinalEquity/result.InitialCapital, daysPerYear/spanDays) - 1
			years := spanDays / daysPerYear
			s.TradesPerYear = float64(s.TotalTrades) / years
		}
	}

	s.Sharpe = sharpe(curve)
	s.MaxDrawdown = maxDrawdown(curve)
	s.ExposurePct = exposure(trades, curve)

	return s
}

// sharpe is the annualized ratio of mean to standard deviation of simple
// daily equity returns. Zero variance means the ratio is undefined.
func sharpe(curve []models.EquityPoint) float64 {
	if len(curve) < 2 {
		return math.NaN()
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev != 0 {
			returns = append(returns, curve[i].Equity/prev-1)
		}
	}
	if len(returns) == 0 {
		return math.NaN()
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	if variance == 0 {
		return math.NaN()
	}
	return mean / math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}

// maxDrawdown is the deepest peak-to-trough decline, via a running maximum.
func maxDrawdown(curve []models.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Equity
	maxDD := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (p.Equity - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// exposure is the fraction of trading days with an open position.
func exposure(trades []models.Trade, curve []models.EquityPoint) float64 {
	if len(curve) == 0 || len(trades) == 0 {
		return 0
	}
	held := 0
	ti := 0
	for _, p := range curve {
		for ti < len(trades) && trades[ti].ExitDate.Before(p.Date) {
			ti++
		}
		if ti < len(trades) && !trades[ti].EntryDate.After(p.Date) {
			held++
		}
	}
	return float64(held) / float64(len(curve))
}
