// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/parcel/internal/core/ports"
)

// chainLink is satisfied by zerr errors, which can report their own message
// and metadata separately from the wrapped cause.
type chainLink interface {
	Message() string
	Metadata() map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a Logger writing human readable lines to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr}
	l.rebuild()
	return l
}

// SetOutput redirects the logger. A nil writer selects stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging, keeping the current output.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// rebuild swaps the slog handler; callers hold l.mu.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(l.output, opts))
		return
	}
	l.logger = slog.New(NewPrettyHandler(l.output, opts))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err and its cause chain.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(formatError(err))
}

// formatError renders err as a headline followed by an indented "Caused by" list.
// Joined errors contribute one entry per branch; zerr metadata is appended as key=value pairs.
func formatError(err error) string {
	entries := collectEntries(err)

	var lines []string
	for i, entry := range entries {
		parts := strings.Split(entry, "\n")
		switch i {
		case 0:
			lines = append(lines, "Error: "+parts[0])
			for _, p := range parts[1:] {
				lines = append(lines, "       "+p)
			}
		default:
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			lines = append(lines, "    → "+parts[0])
			for _, p := range parts[1:] {
				lines = append(lines, "      "+p)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func collectEntries(err error) []string {
	var entries []string
	for current := err; current != nil; {
		if joined, ok := current.(interface{ Unwrap() []error }); ok {
			for _, branch := range joined.Unwrap() {
				entries = append(entries, collectEntries(branch)...)
			}
			break
		}

		link, ok := current.(chainLink)
		if !ok {
			entries = append(entries, current.Error())
			break
		}

		if msg := link.Message(); msg != "" || len(link.Metadata()) > 0 {
			entries = append(entries, strings.TrimSpace(msg+" "+formatMetadata(link.Metadata())))
		}
		current = errors.Unwrap(current)
	}
	return entries
}

func formatMetadata(meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, meta[k])
	}
	return strings.Join(parts, " ")
}
