// Package store provides price series persistence and access.
package store

import (
	"context"
	"time"

	"weekly-backtester/internal/models"
)

// BarSource supplies gap-free, trading-day-aligned daily bars for an
// instrument. Implementations must return bars ordered by date ascending and
// are treated as read-only, shared-by-reference collaborators during sweeps.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)
}

// IntradaySource optionally supplies a price sample at an exact timestamp,
// used when entries or exits are configured at a fixed clock time instead of
// the daily open/close. The bool result reports whether a sample exists.
type IntradaySource interface {
	GetIntradayPrice(ctx context.Context, symbol string, ts time.Time) (float64, bool, error)
}

// BarWriter persists daily bars, deduplicating on (symbol, date).
type BarWriter interface {
	SaveBars(ctx context.Context, symbol string, bars []models.PriceBar) error
}
