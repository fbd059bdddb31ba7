// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Standard sentinel errors
var (
	ErrNoBars           = errors.New("no bars in requested range")
	ErrSeriesMisordered = errors.New("bar series not strictly increasing by date")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
)

// ConfigurationError represents an invalid ParameterSet or run configuration.
// It is raised at construction time; an invalid set never reaches the engine.
type ConfigurationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field string, value interface{}, message string) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DataGapError represents missing price data for part of the horizon.
// A gap covering a single week is recoverable (the week is skipped); a gap
// covering the whole horizon is fatal to the run.
type DataGapError struct {
	Symbol string
	From   time.Time
	To     time.Time
	Err    error
}

func (e *DataGapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data gap [%s] %s..%s: %v",
			e.Symbol, e.From.Format("2006-01-02"), e.To.Format("2006-01-02"), e.Err)
	}
	return fmt.Sprintf("data gap [%s] %s..%s",
		e.Symbol, e.From.Format("2006-01-02"), e.To.Format("2006-01-02"))
}

func (e *DataGapError) Unwrap() error {
	return e.Err
}

// NewDataGapError creates a new DataGapError.
func NewDataGapError(symbol string, from, to time.Time, err error) *DataGapError {
	return &DataGapError{
		Symbol: symbol,
		From:   from,
		To:     to,
		Err:    err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
