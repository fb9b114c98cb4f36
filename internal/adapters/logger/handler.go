package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/parcel/internal/ui/output"
	"go.trai.ch/parcel/internal/ui/style"
)

// PrettyHandler is a slog.Handler producing coloured, human readable lines.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := style.ForLevel(r.Level)

	var b strings.Builder
	if icon != "" {
		b.WriteString(icon + " ")
	}
	b.WriteString(r.Message)

	for _, attr := range h.attrs {
		b.WriteString(" " + h.formatAttr(attr))
	}
	r.Attrs(func(attr slog.Attr) bool {
		b.WriteString(" " + h.formatAttr(attr))
		return true
	})

	styled := h.out.String(b.String()).Foreground(termenv.RGBColor(string(color)))
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &clone
}

// WithGroup returns a handler that prefixes attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	return &clone
}

func (h *PrettyHandler) formatAttr(attr slog.Attr) string {
	key := attr.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	return key + "=" + attr.Value.String()
}
