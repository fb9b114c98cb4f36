// Package detector provides environment detection for progress rendering.
package detector

import (
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode represents how transfer progress is rendered.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeLive redraws a single progress line in place.
	ModeLive
	// ModeLinear prints one line per progress step, suitable for logs and CI.
	ModeLinear
)

// DetectEnvironment returns the recommended output mode for w.
// Only terminals outside CI get live progress.
func DetectEnvironment(w io.Writer) OutputMode {
	f, ok := w.(*os.File)
	isTTY := ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int on supported platforms

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModeLinear
	}
	return ModeLive
}

// ResolveMode applies user override flag to auto-detection.
// userFlag should be one of: "auto", "live", "linear", "ci", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "live":
		return ModeLive
	case "linear", "ci":
		return ModeLinear
	default:
		return autoDetected
	}
}
