package backtest

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"weekly-backtester/internal/models"
	"weekly-backtester/internal/store"
)

// barsFromReturns builds a weekday bar series as a price walk from 100, one
// bar per daily return, each day opening at the previous close.
func barsFromReturns(returns []float64) []models.PriceBar {
	days := make([]dayPrice, len(returns))
	price := 100.0
	for i, r := range returns {
		open := price
		price = open * (1 + r)
		days[i] = dayPrice{open: open, close: price}
	}
	return weekdaySeries(seriesStart, days)
}

// returnsGen generates daily return paths wide enough to trip every exit rule.
func returnsGen() gopter.Gen {
	return gen.SliceOfN(45, gen.Float64Range(-0.06, 0.06))
}

func cooldownGen() gopter.Gen {
	return gen.OneConstOf(models.CooldownNone, 0, 1, 2)
}

func holdModeGen() gopter.Gen {
	return gen.OneConstOf(
		models.HoldNever, models.HoldAlways, models.HoldProfitable,
		models.HoldSMA20, models.HoldSMA50,
	)
}

func propParams(cooldown int, weakness bool, hold models.WeekendHoldMode) models.ParameterSet {
	p := models.DefaultParameterSet()
	p.ReentryCooldown = cooldown
	p.WeaknessEnabled = weakness
	p.WeekendHold = hold
	return p
}

func propRun(t *testing.T, returns []float64, params models.ParameterSet) *models.RunResult {
	t.Helper()
	bars := barsFromReturns(returns)
	mem := store.NewMemoryStore()
	mem.SetBars("TQQQ", bars)
	mem.SetBars("BIL", flatTreasury(bars, 100))

	result, err := New(mem).Run(context.Background(), params, testRunConfig())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result
}

// TestProperty_TradesAreWellFormed checks that every recorded trade carries a
// valid exit reason, ordered dates, positive prices, and a consistent return.
func TestProperty_TradesAreWellFormed(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Every trade is well-formed", prop.ForAll(
		func(returns []float64, cooldown int, weakness bool, hold models.WeekendHoldMode) bool {
			result := propRun(t, returns, propParams(cooldown, weakness, hold))
			for _, trade := range result.Trades {
				if !trade.ExitReason.Valid() {
					return false
				}
				if trade.ExitDate.Before(trade.EntryDate) {
					return false
				}
				if trade.EntryPrice <= 0 || trade.ExitPrice <= 0 {
					return false
				}
				want := trade.ExitPrice/trade.EntryPrice - 1
				if diff := trade.ReturnPct - want; diff > 1e-12 || diff < -1e-12 {
					return false
				}
				if trade.HoldingDays < 1 {
					return false
				}
			}
			return true
		},
		returnsGen(), cooldownGen(), gen.Bool(), holdModeGen(),
	))

	properties.TestingRun(t)
}

// TestProperty_TradesNeverOverlap checks that at most one position is open at
// a time: each trade starts strictly after the previous one closed.
func TestProperty_TradesNeverOverlap(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Trades never overlap", prop.ForAll(
		func(returns []float64, cooldown int, weakness bool, hold models.WeekendHoldMode) bool {
			result := propRun(t, returns, propParams(cooldown, weakness, hold))
			for i := 1; i < len(result.Trades); i++ {
				if !result.Trades[i].EntryDate.After(result.Trades[i-1].ExitDate) {
					return false
				}
			}
			return true
		},
		returnsGen(), cooldownGen(), gen.Bool(), holdModeGen(),
	))

	properties.TestingRun(t)
}

// TestProperty_RunIsDeterministic checks that identical inputs reproduce the
// identical result, trade for trade and equity point for equity point.
func TestProperty_RunIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Identical inputs give identical results", prop.ForAll(
		func(returns []float64, cooldown int, weakness bool, hold models.WeekendHoldMode) bool {
			params := propParams(cooldown, weakness, hold)
			first := propRun(t, returns, params)
			second := propRun(t, returns, params)
			return reflect.DeepEqual(first, second)
		},
		returnsGen(), cooldownGen(), gen.Bool(), holdModeGen(),
	))

	properties.TestingRun(t)
}

// TestProperty_NoReentryAfterTargetA checks that a TP_A exit always ends the
// week's trading: the next entry, if any, lands in a later ISO week.
func TestProperty_NoReentryAfterTargetA(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("TP_A never arms a same-week re-entry", prop.ForAll(
		func(returns []float64, cooldown int) bool {
			result := propRun(t, returns, propParams(cooldown, true, models.HoldNever))
			for i := 1; i < len(result.Trades); i++ {
				prev, next := result.Trades[i-1], result.Trades[i]
				if prev.ExitReason != models.ExitTPA {
					continue
				}
				py, pw := prev.ExitDate.ISOWeek()
				ny, nw := next.EntryDate.ISOWeek()
				if py == ny && pw == nw {
					return false
				}
			}
			return true
		},
		returnsGen(), cooldownGen(),
	))

	properties.TestingRun(t)
}

// TestProperty_CooldownTwoIsOnePerWeek checks the boundary cooldown: with two
// cooldown days even a Monday exit cannot re-enter before Friday, so each ISO
// week holds at most one entry.
func TestProperty_CooldownTwoIsOnePerWeek(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Cooldown 2 caps entries at one per week", prop.ForAll(
		func(returns []float64, weakness bool) bool {
			result := propRun(t, returns, propParams(2, weakness, models.HoldNever))
			seen := map[[2]int]bool{}
			for _, trade := range result.Trades {
				y, w := trade.EntryDate.ISOWeek()
				key := [2]int{y, w}
				if seen[key] {
					return false
				}
				seen[key] = true
			}
			return true
		},
		returnsGen(), gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestProperty_NoWeekendHoldMeansNoWeekSpan checks that without a weekend-hold
// gate every trade opens and closes inside one ISO week.
func TestProperty_NoWeekendHoldMeansNoWeekSpan(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("hold=never trades stay inside their week", prop.ForAll(
		func(returns []float64, cooldown int, weakness bool) bool {
			result := propRun(t, returns, propParams(cooldown, weakness, models.HoldNever))
			for _, trade := range result.Trades {
				ey, ew := trade.EntryDate.ISOWeek()
				xy, xw := trade.ExitDate.ISOWeek()
				if ey != xy || ew != xw {
					return false
				}
			}
			return true
		},
		returnsGen(), cooldownGen(), gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestProperty_EquityCurveCoversEveryBar checks the curve is marked exactly
// once per trading day, in order.
func TestProperty_EquityCurveCoversEveryBar(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("One equity point per bar", prop.ForAll(
		func(returns []float64, cooldown int, weakness bool, hold models.WeekendHoldMode) bool {
			result := propRun(t, returns, propParams(cooldown, weakness, hold))
			if len(result.Curve) != len(returns) {
				return false
			}
			for i := 1; i < len(result.Curve); i++ {
				if !result.Curve[i].Date.After(result.Curve[i-1].Date) {
					return false
				}
			}
			return true
		},
		returnsGen(), cooldownGen(), gen.Bool(), holdModeGen(),
	))

	properties.TestingRun(t)
}
