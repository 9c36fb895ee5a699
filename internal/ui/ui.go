// Package ui handles colored terminal output for the tool's own messages.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color is a requested color mode. It applies to the tool's own output and
// is forwarded to cargo when set explicitly.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

// ParseColor parses a --color value, defaulting to "auto".
func ParseColor(s string) (Color, error) {
	switch Color(s) {
	case ColorAuto, "":
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	default:
		return "", fmt.Errorf("unknown color mode: %q (must be auto, always, or never)", s)
	}
}

var (
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	infoStyle = lipgloss.NewStyle().Bold(true)
)

// Logger writes the tool's diagnostics to a single stream.
type Logger struct {
	out   io.Writer
	color bool
}

// NewLogger creates a logger for out. With ColorAuto, color is enabled only
// when out is a terminal.
func NewLogger(out io.Writer, mode Color) *Logger {
	return &Logger{out: out, color: enableColor(out, mode)}
}

func enableColor(out io.Writer, mode Color) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (l *Logger) render(style lipgloss.Style, prefix string) string {
	if l.color {
		return style.Render(prefix)
	}
	return prefix
}

// Info prints an informational message.
func (l *Logger) Info(format string, args ...any) {
	_, _ = fmt.Fprintf(l.out, "%s "+format+"\n", append([]any{l.render(infoStyle, "info:")}, args...)...)
}

// Warn prints a non-fatal warning.
func (l *Logger) Warn(format string, args ...any) {
	_, _ = fmt.Fprintf(l.out, "%s "+format+"\n", append([]any{l.render(warnStyle, "warning:")}, args...)...)
}

// Error prints a fatal error with its full cause chain.
func (l *Logger) Error(err error) {
	_, _ = fmt.Fprintf(l.out, "%s %v\n", l.render(errStyle, "error:"), err)
}
