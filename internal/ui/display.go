// Package ui provides terminal output for the book2md CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Output destinations; tests replace them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
)

// InitUI applies the --no-color flag.
func InitUI(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Message displays a plain line.
func Message(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, format+"\n", args...)
}

// Success displays a success message.
func Success(format string, args ...interface{}) {
	successColor.Fprintf(Stdout, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	errorColor.Fprintf(Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning displays a warning on stderr.
func Warning(format string, args ...interface{}) {
	warnColor.Fprintf(Stderr, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info displays an informational message.
func Info(format string, args ...interface{}) {
	infoColor.Fprintf(Stdout, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Banner prints title between two rules of '='.
func Banner(title string) {
	rule := strings.Repeat("=", 60)
	headerColor.Fprintf(Stdout, "\n%s\n%s\n%s\n\n", rule, title, rule)
}
