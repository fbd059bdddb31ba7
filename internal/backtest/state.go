package backtest

import "weekly-backtester/internal/models"

// machineState enumerates the strategy state machine states. COOLDOWN is a
// first-class state rather than a flag so transitions stay total.
type machineState int

const (
	stateFlat machineState = iota
	stateHolding
	stateCooldown
)

func (s machineState) String() string {
	switch s {
	case stateFlat:
		return "FLAT"
	case stateHolding:
		return "HOLDING"
	case stateCooldown:
		return "COOLDOWN"
	}
	return "UNKNOWN"
}

// strategyState carries the per-run mutable state of the machine. The machine
// cycles for the whole horizon; there is no terminal state.
type strategyState struct {
	state     machineState
	remaining int // cooldown days left
	pos       models.Position
	entryIdx  int  // bar index of the open position's entry
	reentryOK bool // a TP_C/STOP exit this week armed a re-entry
}

// beginWeek resets week-scoped state. Re-entry eligibility never crosses a
// week boundary; a position carried over the weekend simply keeps HOLDING.
func (st *strategyState) beginWeek() {
	st.reentryOK = false
}

// exited moves the machine out of HOLDING after a close. TP_C and STOP exits
// arm the cooldown when the parameter set allows re-entry; everything else
// drops straight to FLAT.
func (st *strategyState) exited(reason models.ExitReason, params models.ParameterSet) {
	st.pos = models.Position{}
	st.entryIdx = -1

	if (reason == models.ExitTPC || reason == models.ExitStop) && params.ReentryAllowed() {
		st.state = stateCooldown
		st.remaining = params.ReentryCooldown
		st.reentryOK = true
		return
	}
	st.state = stateFlat
}

// tickCooldown advances the cooldown by one trading day. Days with remaining
// budget burn it; the day the machine flips back to FLAT admits no entry
// either, so entries only happen on days that begin flat.
func (st *strategyState) tickCooldown() {
	if st.remaining > 0 {
		st.remaining--
		return
	}
	st.state = stateFlat
	st.remaining = 0
}
