// Package indicators provides the price indicators used by exit gates.
package indicators

import "weekly-backtester/internal/models"

// SMA returns the simple moving average of closes over the period ending at
// index. Returns 0 when not enough bars precede the index.
func SMA(bars []models.PriceBar, index, period int) float64 {
	if period <= 0 || index < period-1 || index >= len(bars) {
		return 0
	}
	var sum float64
	for i := index - period + 1; i <= index; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period)
}
