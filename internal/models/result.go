package models

import "time"

// EquityPoint is one day's marked-to-market portfolio value.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}

// SkippedWeek records a calendar week inside the horizon that had no trading
// days, so no trade was attempted.
type SkippedWeek struct {
	Year int
	Week int // ISO week number
}

// RunResult is the complete outcome of one backtest run. It is produced once
// by the engine and never mutated afterwards; metrics are derived from it.
type RunResult struct {
	Params         ParameterSet
	Trades         []Trade
	Curve          []EquityPoint
	SkippedWeeks   []SkippedWeek
	InitialCapital float64
	FinalEquity    float64
}
