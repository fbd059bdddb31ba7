// Package models defines the domain types for the weekly backtester.
package models

import "time"

// PriceBar represents one instrument's OHLC prices for one trading day.
type PriceBar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Weekday returns the weekday of the bar's date.
func (b PriceBar) Weekday() time.Weekday {
	return b.Date.Weekday()
}
