package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"weekly-backtester/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Data.TradedSymbol != "TQQQ" || cfg.Data.TreasurySymbol != "BIL" {
		t.Errorf("unexpected symbols: %s / %s", cfg.Data.TradedSymbol, cfg.Data.TreasurySymbol)
	}
	if cfg.Backtest.InitialCapital != 100_000 {
		t.Errorf("initial capital = %f, want 100000", cfg.Backtest.InitialCapital)
	}

	params, err := cfg.ParameterSet()
	if err != nil {
		t.Fatalf("default parameters must validate: %v", err)
	}
	base := models.DefaultParameterSet()
	if math.Abs(params.TargetA-base.TargetA) > 1e-9 ||
		math.Abs(params.TargetC-base.TargetC) > 1e-9 ||
		math.Abs(params.Stop-base.Stop) > 1e-9 {
		t.Errorf("default thresholds diverged: %s", params.String())
	}
	if params.EntryDay != base.EntryDay || params.ExitDay != base.ExitDay ||
		params.ReentryCooldown != base.ReentryCooldown || params.WeekendHold != base.WeekendHold {
		t.Errorf("default schedule diverged: %s", params.String())
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := `
strategy:
  tp_a: 10.0
  tp_c: 4.0
  stop: -2.0
  weakness_enabled: false
  entry_day: tuesday
  exit_day: thursday
  reentry_cooldown: "1"
  weekend_hold: profitable
backtest:
  start: "2015-01-01"
  end: "2020-01-01"
  initial_capital: 50000
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	params, err := cfg.ParameterSet()
	if err != nil {
		t.Fatalf("ParameterSet failed: %v", err)
	}
	if params.TargetA != 0.10 || params.TargetC != 0.04 || params.Stop != -0.02 {
		t.Errorf("percent conversion wrong: %s", params.String())
	}
	if params.WeaknessEnabled {
		t.Error("expected weakness disabled")
	}
	if params.EntryDay != time.Tuesday || params.ExitDay != time.Thursday {
		t.Errorf("days = %s/%s, want Tuesday/Thursday", params.EntryDay, params.ExitDay)
	}
	if params.ReentryCooldown != 1 {
		t.Errorf("cooldown = %d, want 1", params.ReentryCooldown)
	}
	if params.WeekendHold != models.HoldProfitable {
		t.Errorf("hold = %s, want profitable", params.WeekendHold)
	}

	start, end, err := cfg.Horizon()
	if err != nil {
		t.Fatalf("Horizon failed: %v", err)
	}
	if start.Year() != 2015 || end.Year() != 2020 {
		t.Errorf("horizon = %s..%s", start, end)
	}
	if cfg.Backtest.InitialCapital != 50_000 {
		t.Errorf("initial capital = %f, want 50000", cfg.Backtest.InitialCapital)
	}
}

func TestParameterSetRejectsBadStrategy(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad weekday", func(c *Config) { c.Strategy.EntryDay = "someday" }},
		{"bad cooldown", func(c *Config) { c.Strategy.ReentryCooldown = "5" }},
		{"inverted targets", func(c *Config) { c.Strategy.TargetC = 12.0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *cfg
			tt.mutate(&c)
			if _, err := c.ParameterSet(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHorizonRejectsInvertedDates(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Backtest.Start = "2020-01-01"
	cfg.Backtest.End = "2019-01-01"

	if _, _, err := cfg.Horizon(); err == nil {
		t.Error("expected error for end before start")
	}
}
