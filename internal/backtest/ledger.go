package backtest

import (
	"time"

	"weekly-backtester/internal/models"
)

// Ledger tracks cash, the open position's units, the treasury sweep balance
// and the daily equity curve. All fills are frictionless: no commissions, no
// slippage. Equity is marked to market once per trading day and never
// clamped; a leveraged instrument is allowed to drag it to or below zero.
type Ledger struct {
	cash          float64
	units         float64 // traded instrument units while holding
	treasuryUnits float64
	lastTreasury  float64 // last seen treasury price, fallback mark
	curve         []models.EquityPoint
}

// NewLedger creates a ledger seeded with the initial capital as cash.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{cash: initialCapital}
}

// Holding reports whether traded-instrument units are open.
func (l *Ledger) Holding() bool {
	return l.units != 0
}

// SweepOut sells the whole treasury balance back to cash at price. A
// non-positive price (no treasury bar for the day) sells at the last seen
// price instead.
func (l *Ledger) SweepOut(price float64) {
	if l.treasuryUnits == 0 {
		return
	}
	if price <= 0 {
		price = l.lastTreasury
	}
	l.cash += l.treasuryUnits * price
	l.treasuryUnits = 0
	l.lastTreasury = price
}

// SweepIn moves all cash into the treasury instrument at price.
func (l *Ledger) SweepIn(price float64) {
	if l.cash == 0 || price <= 0 {
		return
	}
	l.treasuryUnits += l.cash / price
	l.cash = 0
	l.lastTreasury = price
}

// Open converts all cash into traded-instrument units at the fill price and
// returns the notional committed.
func (l *Ledger) Open(fill float64) float64 {
	notional := l.cash
	l.units = l.cash / fill
	l.cash = 0
	return notional
}

// Close liquidates the open units at price, realizing P&L into cash.
func (l *Ledger) Close(price float64) {
	l.cash += l.units * price
	l.units = 0
}

// Mark appends one equity point for the day. treasuryClose may be zero when
// the treasury series has no bar for the date; the last seen price marks the
// balance instead.
func (l *Ledger) Mark(date time.Time, tradedClose, treasuryClose float64) models.EquityPoint {
	tp := treasuryClose
	if tp <= 0 {
		tp = l.lastTreasury
	} else {
		l.lastTreasury = tp
	}

	equity := l.cash + l.units*tradedClose + l.treasuryUnits*tp
	point := models.EquityPoint{Date: date, Equity: equity}
	l.curve = append(l.curve, point)
	return point
}

// Curve returns the accumulated equity curve.
func (l *Ledger) Curve() []models.EquityPoint {
	return l.curve
}

// Equity returns the most recent marked equity, or the raw balances when no
// day has been marked yet.
func (l *Ledger) Equity() float64 {
	if len(l.curve) == 0 {
		return l.cash + l.treasuryUnits*l.lastTreasury
	}
	return l.curve[len(l.curve)-1].Equity
}
