// Package schedule partitions a daily bar series into calendar-week windows.
package schedule

import (
	"time"

	"weekly-backtester/internal/models"
)

// Window is one calendar week of trading days, with the entry and exit
// candidate days clipped to the days actually available. Indices point into
// the bar series the window was built from.
type Window struct {
	Year     int // ISO year
	Week     int // ISO week
	FirstIdx int // first trading day of the week
	LastIdx  int // last trading day of the week
	EntryIdx int // entry candidate, clipped
	ExitIdx  int // exit candidate, clipped
}

// Contains reports whether bar index i falls inside the week.
func (w Window) Contains(i int) bool {
	return i >= w.FirstIdx && i <= w.LastIdx
}

// Weeks groups bars into ISO-week windows and resolves each week's entry and
// exit candidate days. Holiday-shortened weeks clip to the first/last
// available day; a week whose entry candidate lands past the exit candidate
// collapses both onto the exit day.
func Weeks(bars []models.PriceBar, entryDay, exitDay time.Weekday) []Window {
	var windows []Window
	i := 0
	for i < len(bars) {
		year, week := bars[i].Date.ISOWeek()
		j := i
		for j < len(bars) {
			y, w := bars[j].Date.ISOWeek()
			if y != year || w != week {
				break
			}
			j++
		}

		win := Window{
			Year:     year,
			Week:     week,
			FirstIdx: i,
			LastIdx:  j - 1,
			EntryIdx: -1,
			ExitIdx:  -1,
		}
		for k := i; k < j; k++ {
			if win.EntryIdx < 0 && bars[k].Weekday() >= entryDay {
				win.EntryIdx = k
			}
			if bars[k].Weekday() <= exitDay {
				win.ExitIdx = k
			}
		}
		if win.EntryIdx < 0 {
			win.EntryIdx = win.LastIdx
		}
		if win.ExitIdx < 0 {
			win.ExitIdx = win.FirstIdx
		}
		if win.EntryIdx > win.ExitIdx {
			win.EntryIdx = win.ExitIdx
		}

		windows = append(windows, win)
		i = j
	}
	return windows
}

// MissingWeeks returns the ISO weeks strictly inside the series span that
// contain no trading days at all.
func MissingWeeks(bars []models.PriceBar) []models.SkippedWeek {
	if len(bars) < 2 {
		return nil
	}

	present := make(map[[2]int]bool)
	for _, b := range bars {
		y, w := b.Date.ISOWeek()
		present[[2]int{y, w}] = true
	}

	var missing []models.SkippedWeek
	for d := bars[0].Date; !d.After(bars[len(bars)-1].Date); d = d.AddDate(0, 0, 7) {
		y, w := d.ISOWeek()
		if !present[[2]int{y, w}] {
			missing = append(missing, models.SkippedWeek{Year: y, Week: w})
		}
	}
	return missing
}
