// Package ui provides colored console logging.
//
// A Logger is constructed explicitly and handed to each component that needs
// to report progress; there is no package-level logger state.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Logger writes leveled, colored lines to a single writer.
type Logger struct {
	out     io.Writer
	color   bool
	verbose bool
	fields  []string
}

// Option configures a Logger.
type Option func(*Logger)

// WithColor forces color output on or off.
func WithColor(enabled bool) Option {
	return func(l *Logger) { l.color = enabled }
}

// WithVerbose enables Debug output.
func WithVerbose(enabled bool) Option {
	return func(l *Logger) { l.verbose = enabled }
}

// New creates a Logger writing to w. Color is enabled only when w is a terminal.
func New(w io.Writer, opts ...Option) *Logger {
	l := &Logger{out: w, color: isTerminal(w)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, WithColor(false))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// With returns a copy of the logger that appends key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	clone := *l
	clone.fields = append(append([]string(nil), l.fields...), fmt.Sprintf("%s=%v", key, value))
	return &clone
}

// Debug prints a message only when verbose output is enabled.
func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.line(color.FgHiBlack, "· ", format, args...)
}

// Info prints a blue info message.
func (l *Logger) Info(format string, args ...any) {
	l.line(color.FgBlue, "", format, args...)
}

// Success prints a green success message with checkmark.
func (l *Logger) Success(format string, args ...any) {
	l.line(color.FgGreen, "✓ ", format, args...)
}

// Warning prints a yellow warning message.
func (l *Logger) Warning(format string, args ...any) {
	l.line(color.FgYellow, "⚠ ", format, args...)
}

// Error prints a red error message with X.
func (l *Logger) Error(format string, args ...any) {
	l.line(color.FgRed, "✗ ", format, args...)
}

// Step prints a numbered step in cyan.
func (l *Logger) Step(n int, format string, args ...any) {
	l.paint(color.FgCyan).Fprintf(l.out, "[%d] ", n)
	fmt.Fprintln(l.out, l.message(format, args...))
}

// Header prints a bold header.
func (l *Logger) Header(format string, args ...any) {
	l.line(color.Bold, "", format, args...)
}

func (l *Logger) line(attr color.Attribute, prefix, format string, args ...any) {
	l.paint(attr).Fprintln(l.out, prefix+l.message(format, args...))
}

func (l *Logger) message(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if len(l.fields) == 0 {
		return msg
	}
	return msg + " " + strings.Join(l.fields, " ")
}

func (l *Logger) paint(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if l.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
