package models

import (
	"fmt"
	"time"

	apperrors "weekly-backtester/internal/errors"
)

// WeekendHoldMode controls whether an open position may carry over a weekend.
type WeekendHoldMode string

const (
	HoldNever      WeekendHoldMode = "never"
	HoldAlways     WeekendHoldMode = "always"
	HoldProfitable WeekendHoldMode = "profitable"
	HoldSMA20      WeekendHoldMode = "sma20"
	HoldSMA50      WeekendHoldMode = "sma50"
)

// CooldownNone disables same-week re-entry after a TP_C or STOP exit.
const CooldownNone = -1

// Price reference keywords for entry/exit timing. Anything else must be a
// HH:MM clock time resolved through an intraday source.
const (
	TimeOpen  = "open"
	TimeClose = "close"
)

// ParameterSet is the immutable configuration bundle for one backtest run.
// Construct through NewParameterSet or validate with Validate before use.
type ParameterSet struct {
	TargetA         float64 // primary take-profit, fraction of entry price
	TargetC         float64 // secondary take-profit, smaller, re-entry capable
	Stop            float64 // close-based stop, negative fraction
	WeaknessEnabled bool
	EntryDay        time.Weekday
	EntryTime       string // TimeOpen or "HH:MM"
	ExitDay         time.Weekday
	ExitTime        string // TimeClose or "HH:MM"
	ReentryCooldown int    // CooldownNone, 0, 1 or 2 trading days
	WeekendHold     WeekendHoldMode
}

// DefaultParameterSet returns the baseline configuration: 8.1%/2.5% targets,
// -1.3% stop, weakness on, Monday-open entry, Friday-close exit, no re-entry,
// no weekend hold.
func DefaultParameterSet() ParameterSet {
	return ParameterSet{
		TargetA:         0.081,
		TargetC:         0.025,
		Stop:            -0.013,
		WeaknessEnabled: true,
		EntryDay:        time.Monday,
		EntryTime:       TimeOpen,
		ExitDay:         time.Friday,
		ExitTime:        TimeClose,
		ReentryCooldown: CooldownNone,
		WeekendHold:     HoldNever,
	}
}

// NewParameterSet validates and returns a ParameterSet.
func NewParameterSet(p ParameterSet) (ParameterSet, error) {
	if err := p.Validate(); err != nil {
		return ParameterSet{}, err
	}
	return p, nil
}

// Validate checks the invariants of the parameter set. It returns a
// *errors.ConfigurationError describing the first violation found.
func (p ParameterSet) Validate() error {
	if p.TargetA <= 0 {
		return apperrors.NewConfigurationError("tp_a", p.TargetA, "primary target must be positive")
	}
	if p.TargetC <= 0 {
		return apperrors.NewConfigurationError("tp_c", p.TargetC, "secondary target must be positive")
	}
	if p.TargetC >= p.TargetA {
		return apperrors.NewConfigurationError("tp_c", p.TargetC, "secondary target must be below primary target")
	}
	if p.Stop >= 0 {
		return apperrors.NewConfigurationError("stop", p.Stop, "stop must be a negative fraction")
	}
	if !isTradingWeekday(p.EntryDay) {
		return apperrors.NewConfigurationError("entry_day", p.EntryDay.String(), "entry day must be Monday through Friday")
	}
	if !isTradingWeekday(p.ExitDay) {
		return apperrors.NewConfigurationError("exit_day", p.ExitDay.String(), "exit day must be Monday through Friday")
	}
	if p.ExitDay < p.EntryDay {
		return apperrors.NewConfigurationError("exit_day", p.ExitDay.String(), "exit day precedes entry day")
	}
	if err := validateClock("entry_time", p.EntryTime, TimeOpen); err != nil {
		return err
	}
	if err := validateClock("exit_time", p.ExitTime, TimeClose); err != nil {
		return err
	}
	switch p.ReentryCooldown {
	case CooldownNone, 0, 1, 2:
	default:
		return apperrors.NewConfigurationError("reentry_cooldown", p.ReentryCooldown, "cooldown must be none, 0, 1 or 2")
	}
	switch p.WeekendHold {
	case HoldNever, HoldAlways, HoldProfitable, HoldSMA20, HoldSMA50:
	default:
		return apperrors.NewConfigurationError("weekend_hold", string(p.WeekendHold), "unknown weekend hold mode")
	}
	return nil
}

// ReentryAllowed reports whether the set permits same-week re-entry at all.
func (p ParameterSet) ReentryAllowed() bool {
	return p.ReentryCooldown != CooldownNone
}

// String renders the set compactly for logs and report headers.
func (p ParameterSet) String() string {
	cooldown := "none"
	if p.ReentryCooldown != CooldownNone {
		cooldown = fmt.Sprintf("%d", p.ReentryCooldown)
	}
	return fmt.Sprintf("tpA=%.1f%% tpC=%.1f%% stop=%.1f%% weakness=%v %s@%s->%s@%s cooldown=%s hold=%s",
		p.TargetA*100, p.TargetC*100, p.Stop*100, p.WeaknessEnabled,
		p.EntryDay.String()[:3], p.EntryTime, p.ExitDay.String()[:3], p.ExitTime,
		cooldown, p.WeekendHold)
}

func isTradingWeekday(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Friday
}

func validateClock(field, value, keyword string) error {
	if value == keyword {
		return nil
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return apperrors.NewConfigurationError(field, value,
			fmt.Sprintf("must be %q or a HH:MM clock time", keyword))
	}
	return nil
}
