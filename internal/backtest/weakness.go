package backtest

import "weekly-backtester/internal/models"

// WeaknessPredicate decides whether an open position should be cut early
// because it is unlikely to reach a target before the end of the week. The
// trigger is deliberately pluggable; the state machine only cares about the
// boolean. held contains the daily bars from the entry day through the
// current day, inclusive.
type WeaknessPredicate func(pos models.Position, held []models.PriceBar) bool

// DefaultWeakness flags a trade whose entry day closed below the fill and
// whose latest close has since undercut that first close. A single weak close
// is tolerated; confirmed follow-through selling is not.
func DefaultWeakness(pos models.Position, held []models.PriceBar) bool {
	if len(held) < 2 {
		return false
	}
	first := held[0]
	last := held[len(held)-1]
	return first.Close < pos.EntryPrice && last.Close < first.Close
}
