package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "weekly-backtester/internal/errors"
	"weekly-backtester/internal/models"
)

func testBar(y int, m time.Month, d int, close float64) models.PriceBar {
	return models.PriceBar{
		Date:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Open:  close - 0.5,
		High:  close + 0.5,
		Low:   close - 1,
		Close: close,
	}
}

func TestLoadBarsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	data := `date,open,high,low,close
2024-01-02,100.5,101.2,100.1,101.0
2024-01-03,101.0,102.0,100.8,101.7
2024-01-04,101.7,101.9,100.9,101.1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	bars, err := LoadBarsCSV(path)
	if err != nil {
		t.Fatalf("LoadBarsCSV failed: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	first := bars[0]
	if first.Date.Format("2006-01-02") != "2024-01-02" {
		t.Errorf("unexpected first date %s", first.Date)
	}
	if first.Open != 100.5 || first.High != 101.2 || first.Low != 100.1 || first.Close != 101.0 {
		t.Errorf("unexpected first bar %+v", first)
	}
}

func TestLoadBarsCSVMisordered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	data := `date,open,high,low,close
2024-01-03,101.0,102.0,100.8,101.7
2024-01-02,100.5,101.2,100.1,101.0
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadBarsCSV(path)
	if !apperrors.Is(err, apperrors.ErrSeriesMisordered) {
		t.Fatalf("expected ErrSeriesMisordered, got %v", err)
	}
}

func TestLoadBarsCSVBadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	data := `date,open,high,low,close
01/02/2024,100.5,101.2,100.1,101.0
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadBarsCSV(path); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	bars := []models.PriceBar{
		testBar(2024, time.January, 2, 101),
		testBar(2024, time.January, 3, 102),
		testBar(2024, time.January, 4, 101.5),
	}
	if err := store.SaveBars(ctx, "TQQQ", bars); err != nil {
		t.Fatalf("SaveBars failed: %v", err)
	}

	got, err := store.GetBars(ctx, "TQQQ",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetBars failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Date.After(got[i-1].Date) {
			t.Fatal("bars not ordered by date")
		}
	}

	n, err := store.BarCount(ctx, "TQQQ")
	if err != nil || n != 3 {
		t.Errorf("BarCount = %d, %v; want 3", n, err)
	}
	if n, _ := store.BarCount(ctx, "BIL"); n != 0 {
		t.Errorf("expected 0 bars for unknown symbol, got %d", n)
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveBars(ctx, "TQQQ", []models.PriceBar{testBar(2024, time.January, 2, 101)}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveBars(ctx, "TQQQ", []models.PriceBar{testBar(2024, time.January, 2, 99)}); err != nil {
		t.Fatalf("re-saving the same date must upsert: %v", err)
	}

	got, err := store.GetBars(ctx, "TQQQ",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 bar after upsert, got %d", len(got))
	}
	if got[0].Close != 99 {
		t.Errorf("expected updated close 99, got %.2f", got[0].Close)
	}
}

func TestSQLiteStoreIntraday(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	ts := time.Date(2024, 1, 2, 9, 35, 0, 0, time.UTC)

	if _, ok, err := store.GetIntradayPrice(ctx, "TQQQ", ts); err != nil || ok {
		t.Fatalf("expected no sample, got ok=%v err=%v", ok, err)
	}

	if err := store.SaveIntradayPrice(ctx, "TQQQ", ts, 100.9); err != nil {
		t.Fatalf("SaveIntradayPrice failed: %v", err)
	}
	price, ok, err := store.GetIntradayPrice(ctx, "TQQQ", ts)
	if err != nil || !ok {
		t.Fatalf("expected sample, got ok=%v err=%v", ok, err)
	}
	if price != 100.9 {
		t.Errorf("expected 100.9, got %.2f", price)
	}
}

func TestMemoryStoreRangeFilter(t *testing.T) {
	mem := NewMemoryStore()
	mem.SetBars("TQQQ", []models.PriceBar{
		testBar(2024, time.January, 2, 101),
		testBar(2024, time.January, 3, 102),
		testBar(2024, time.February, 1, 105),
	})

	got, err := mem.GetBars(context.Background(), "TQQQ",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 bars in January, got %d", len(got))
	}
}
