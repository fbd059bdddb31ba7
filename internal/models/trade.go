package models

import "time"

// ExitReason identifies which rule closed a trade. Exactly one fires per
// trade; ties on a single bar are broken by the engine's fixed precedence.
type ExitReason string

const (
	ExitTPA      ExitReason = "TP_A"
	ExitTPC      ExitReason = "TP_C"
	ExitStop     ExitReason = "STOP"
	ExitEOW      ExitReason = "EOW"
	ExitWeakness ExitReason = "WEAKNESS"
)

// ExitReasons lists the closed set of exit reasons in precedence order.
var ExitReasons = []ExitReason{ExitTPA, ExitTPC, ExitStop, ExitWeakness, ExitEOW}

// Valid reports whether r is a member of the closed exit-reason set.
func (r ExitReason) Valid() bool {
	switch r {
	case ExitTPA, ExitTPC, ExitStop, ExitEOW, ExitWeakness:
		return true
	}
	return false
}

// Position is an open position, owned exclusively by the strategy state
// machine until it is converted to a Trade on close.
type Position struct {
	EntryDate  time.Time
	EntryPrice float64
	Notional   float64
}

// Trade represents a completed round trip. Immutable once created.
type Trade struct {
	EntryDate   time.Time
	EntryPrice  float64
	ExitDate    time.Time
	ExitPrice   float64
	ExitReason  ExitReason
	ReturnPct   float64
	HoldingDays int // trading days from entry to exit inclusive
}

// Won reports whether the trade closed with a positive return.
func (t Trade) Won() bool {
	return t.ReturnPct > 0
}
