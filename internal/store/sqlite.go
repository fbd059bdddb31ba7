package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"weekly-backtester/internal/models"
)

// SQLiteStore implements BarSource, IntradaySource and BarWriter using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed bar store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Daily OHLC bars
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);
	CREATE INDEX IF NOT EXISTS idx_bars_symbol_date ON bars(symbol, date);

	-- Optional intraday samples for fixed-clock entries/exits
	CREATE TABLE IF NOT EXISTS intraday_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		ts DATETIME NOT NULL,
		price REAL NOT NULL,
		UNIQUE(symbol, ts)
	);
	CREATE INDEX IF NOT EXISTS idx_intraday_symbol_ts ON intraday_prices(symbol, ts);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBars upserts daily bars for a symbol.
func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []models.PriceBar) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (symbol, date, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high,
			low = excluded.low, close = excluded.close
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Date, b.Open, b.High, b.Low, b.Close); err != nil {
			return fmt.Errorf("failed to insert bar %s %s: %w", symbol, b.Date.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// GetBars returns daily bars for a symbol in [from, to], ordered by date.
func (s *SQLiteStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close
		FROM bars
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []models.PriceBar
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bars: %w", err)
	}
	return bars, nil
}

// SaveIntradayPrice upserts one intraday sample.
func (s *SQLiteStore) SaveIntradayPrice(ctx context.Context, symbol string, ts time.Time, price float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO intraday_prices (symbol, ts, price)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol, ts) DO UPDATE SET price = excluded.price
	`, symbol, ts, price)
	if err != nil {
		return fmt.Errorf("failed to insert intraday price: %w", err)
	}
	return nil
}

// GetIntradayPrice returns the sample at exactly ts, if one exists.
func (s *SQLiteStore) GetIntradayPrice(ctx context.Context, symbol string, ts time.Time) (float64, bool, error) {
	var price float64
	err := s.db.QueryRowContext(ctx, `
		SELECT price FROM intraday_prices WHERE symbol = ? AND ts = ?
	`, symbol, ts).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query intraday price: %w", err)
	}
	return price, true, nil
}

// BarCount returns the number of stored daily bars for a symbol.
func (s *SQLiteStore) BarCount(ctx context.Context, symbol string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bars WHERE symbol = ?`, symbol).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count bars: %w", err)
	}
	return n, nil
}
