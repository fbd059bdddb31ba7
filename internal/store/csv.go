package store

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "weekly-backtester/internal/errors"
	"weekly-backtester/internal/models"
)

// barRecord maps one CSV row of daily OHLC data.
type barRecord struct {
	Date  string  `csv:"date"`
	Open  float64 `csv:"open"`
	High  float64 `csv:"high"`
	Low   float64 `csv:"low"`
	Close float64 `csv:"close"`
}

// LoadBarsCSV reads daily bars from a CSV file with a
// date,open,high,low,close header. Dates must be YYYY-MM-DD and strictly
// increasing.
func LoadBarsCSV(path string) ([]models.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var records []*barRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	bars := make([]models.PriceBar, 0, len(records))
	var prev time.Time
	for i, r := range records {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad date %q: %w", i+1, r.Date, err)
		}
		if !prev.IsZero() && !date.After(prev) {
			return nil, apperrors.Wrapf(apperrors.ErrSeriesMisordered, "row %d (%s)", i+1, r.Date)
		}
		prev = date
		bars = append(bars, models.PriceBar{
			Date:  date,
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
		})
	}
	return bars, nil
}
