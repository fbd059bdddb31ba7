package store

import (
	"context"
	"sync"
	"time"

	"weekly-backtester/internal/models"
)

// MemoryStore is an in-memory BarSource/IntradaySource. It backs tests and
// sweeps, where many concurrent runs share one immutable series.
type MemoryStore struct {
	mu       sync.RWMutex
	bars     map[string][]models.PriceBar
	intraday map[string]map[time.Time]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bars:     make(map[string][]models.PriceBar),
		intraday: make(map[string]map[time.Time]float64),
	}
}

// SetBars replaces the daily series for a symbol.
func (m *MemoryStore) SetBars(symbol string, bars []models.PriceBar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[symbol] = bars
}

// SetIntradayPrice records one intraday sample.
func (m *MemoryStore) SetIntradayPrice(symbol string, ts time.Time, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.intraday[symbol] == nil {
		m.intraday[symbol] = make(map[time.Time]float64)
	}
	m.intraday[symbol][ts] = price
}

// GetBars returns the bars for a symbol within [from, to].
func (m *MemoryStore) GetBars(_ context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.PriceBar
	for _, b := range m.bars[symbol] {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// GetIntradayPrice returns the sample at exactly ts, if recorded.
func (m *MemoryStore) GetIntradayPrice(_ context.Context, symbol string, ts time.Time) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	price, ok := m.intraday[symbol][ts]
	return price, ok, nil
}
