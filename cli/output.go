// Package cli holds the terminal output helpers shared by the sculptor
// commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Stdout and Stderr are where the helpers write. Tests swap them out.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// exit is os.Exit, replaced in tests.
var exit = os.Exit

// Fatal prints a message to stderr and exits with code 1.
func Fatal(msg string) {
	fmt.Fprintln(Stderr, "error:", msg)
	exit(1)
}

// Fatalf prints a formatted message to stderr and exits with code 1.
func Fatalf(format string, args ...any) {
	fmt.Fprintf(Stderr, "error: "+format+"\n", args...)
	exit(1)
}

// FatalErr prints an error message with details to stderr and exits with code 1.
func FatalErr(msg string, err error) {
	fmt.Fprintf(Stderr, "error: %s: %v\n", msg, err)
	exit(1)
}

// Info prints an informational message to stdout.
func Info(msg string) {
	fmt.Fprintln(Stdout, msg)
}

// Infof prints a formatted informational message to stdout.
func Infof(format string, args ...any) {
	fmt.Fprintf(Stdout, format+"\n", args...)
}

// Success prints a success message to stdout.
func Success(msg string) {
	fmt.Fprintln(Stdout, "✓", msg)
}

// Successf prints a formatted success message to stdout.
func Successf(format string, args ...any) {
	fmt.Fprintf(Stdout, "✓ "+format+"\n", args...)
}

// Warn prints a warning message to stderr.
func Warn(msg string) {
	fmt.Fprintln(Stderr, "warning:", msg)
}

// Warnf prints a formatted warning message to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(Stderr, "warning: "+format+"\n", args...)
}

// Table prints rows as aligned columns under header. Rows shorter than the
// header are padded with empty cells.
func Table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		cells := make([]string, len(header))
		copy(cells, row)
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}
