// Package cli provides the command-line interface for the backtester.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && isTerminal(),
	}
}

func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Printf writes formatted output.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Println writes a line.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Bold writes bold text when color is enabled.
func (o *Output) Bold(format string, args ...interface{}) {
	if o.colorEnabled {
		fmt.Fprintf(o.writer, ColorBold+format+ColorReset, args...)
		return
	}
	fmt.Fprintf(o.writer, format, args...)
}

// Error writes an error message.
func (o *Output) Error(format string, args ...interface{}) {
	if o.colorEnabled {
		fmt.Fprintf(o.writer, ColorRed+"Error: "+format+ColorReset+"\n", args...)
		return
	}
	fmt.Fprintf(o.writer, "Error: "+format+"\n", args...)
}

// PnLColor returns the color code for a signed value.
func (o *Output) PnLColor(value float64) string {
	if !o.colorEnabled {
		return ""
	}
	if value >= 0 {
		return ColorGreen
	}
	return ColorRed
}

// Colorize wraps text in a color when color is enabled.
func (o *Output) Colorize(color, text string) string {
	if !o.colorEnabled || color == "" {
		return text
	}
	return color + text + ColorReset
}

// Percent renders a fraction as a percent, or "n/a" when undefined.
func Percent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// Ratio renders a plain ratio, or "n/a" when undefined.
func Ratio(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
