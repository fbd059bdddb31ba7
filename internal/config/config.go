// Package config provides configuration management for the backtester.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "weekly-backtester/internal/errors"
	"weekly-backtester/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig holds price series storage configuration.
type DataConfig struct {
	DBPath         string `mapstructure:"db_path"`
	TradedSymbol   string `mapstructure:"traded_symbol"`
	TreasurySymbol string `mapstructure:"treasury_symbol"`
}

// BacktestConfig holds run horizon and capital configuration.
type BacktestConfig struct {
	Start          string  `mapstructure:"start"` // YYYY-MM-DD
	End            string  `mapstructure:"end"`
	InitialCapital float64 `mapstructure:"initial_capital"`
}

// StrategyConfig holds strategy parameters as they appear in config files.
// Percent fields are plain percents (8.1 means 8.1%), converted to fractions
// when building the ParameterSet.
type StrategyConfig struct {
	TargetA         float64 `mapstructure:"tp_a"`
	TargetC         float64 `mapstructure:"tp_c"`
	Stop            float64 `mapstructure:"stop"`
	WeaknessEnabled bool    `mapstructure:"weakness_enabled"`
	EntryDay        string  `mapstructure:"entry_day"`
	EntryTime       string  `mapstructure:"entry_time"`
	ExitDay         string  `mapstructure:"exit_day"`
	ExitTime        string  `mapstructure:"exit_time"`
	ReentryCooldown string  `mapstructure:"reentry_cooldown"` // "none", "0", "1", "2"
	WeekendHold     string  `mapstructure:"weekend_hold"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/weekly-backtester"
	}
	return filepath.Join(home, ".config", "weekly-backtester")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("data.db_path", filepath.Join(configDir, "bars.db"))
	v.SetDefault("data.traded_symbol", "TQQQ")
	v.SetDefault("data.treasury_symbol", "BIL")
	v.SetDefault("backtest.start", "2010-01-01")
	v.SetDefault("backtest.end", "2026-01-01")
	v.SetDefault("backtest.initial_capital", 100_000.0)

	base := models.DefaultParameterSet()
	v.SetDefault("strategy.tp_a", base.TargetA*100)
	v.SetDefault("strategy.tp_c", base.TargetC*100)
	v.SetDefault("strategy.stop", base.Stop*100)
	v.SetDefault("strategy.weakness_enabled", base.WeaknessEnabled)
	v.SetDefault("strategy.entry_day", strings.ToLower(base.EntryDay.String()))
	v.SetDefault("strategy.entry_time", base.EntryTime)
	v.SetDefault("strategy.exit_day", strings.ToLower(base.ExitDay.String()))
	v.SetDefault("strategy.exit_time", base.ExitTime)
	v.SetDefault("strategy.reentry_cooldown", "none")
	v.SetDefault("strategy.weekend_hold", string(models.HoldNever))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
}

// ParameterSet builds and validates the ParameterSet described by the
// strategy section.
func (c *Config) ParameterSet() (models.ParameterSet, error) {
	entryDay, err := parseWeekday(c.Strategy.EntryDay)
	if err != nil {
		return models.ParameterSet{}, apperrors.NewConfigurationError("entry_day", c.Strategy.EntryDay, err.Error())
	}
	exitDay, err := parseWeekday(c.Strategy.ExitDay)
	if err != nil {
		return models.ParameterSet{}, apperrors.NewConfigurationError("exit_day", c.Strategy.ExitDay, err.Error())
	}
	cooldown, err := parseCooldown(c.Strategy.ReentryCooldown)
	if err != nil {
		return models.ParameterSet{}, apperrors.NewConfigurationError("reentry_cooldown", c.Strategy.ReentryCooldown, err.Error())
	}

	return models.NewParameterSet(models.ParameterSet{
		TargetA:         c.Strategy.TargetA / 100,
		TargetC:         c.Strategy.TargetC / 100,
		Stop:            c.Strategy.Stop / 100,
		WeaknessEnabled: c.Strategy.WeaknessEnabled,
		EntryDay:        entryDay,
		EntryTime:       c.Strategy.EntryTime,
		ExitDay:         exitDay,
		ExitTime:        c.Strategy.ExitTime,
		ReentryCooldown: cooldown,
		WeekendHold:     models.WeekendHoldMode(c.Strategy.WeekendHold),
	})
}

// Horizon parses the backtest start/end dates.
func (c *Config) Horizon() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.Backtest.Start)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewConfigurationError("backtest.start", c.Backtest.Start, "must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", c.Backtest.End)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewConfigurationError("backtest.end", c.Backtest.End, "must be YYYY-MM-DD")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, apperrors.NewConfigurationError("backtest.end", c.Backtest.End, "must be after start")
	}
	return start, end, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func parseCooldown(s string) (int, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return models.CooldownNone, nil
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	case "2":
		return 2, nil
	}
	return 0, fmt.Errorf("cooldown must be none, 0, 1 or 2, got %q", s)
}
