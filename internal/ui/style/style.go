// Package style provides the colours and icons shared by the logger and the CLI.
package style

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)

// ForLevel returns the icon and colour used for a log level.
func ForLevel(level slog.Level) (string, lipgloss.Color) {
	switch {
	case level >= slog.LevelError:
		return Cross, Red
	case level >= slog.LevelWarn:
		return Warning, Yellow
	default:
		return "", Slate
	}
}

// Current renders a cache status marker: a filled green dot when the package
// is current, a hollow yellow circle when it needs an update.
func Current(current bool) string {
	if current {
		return lipgloss.NewStyle().Foreground(Green).Render(Dot)
	}
	return lipgloss.NewStyle().Foreground(Yellow).Render(Circle)
}
