package commands

import (
	"fmt"
	"io"
	"sync"

	"go.trai.ch/parcel/internal/adapters/detector"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/ui/style"
)

// progressPrinter renders per-path update progress. Live mode redraws one
// line in place; linear mode prints a line per finished path.
type progressPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	live bool
}

func newProgressPrinter(w io.Writer, mode detector.OutputMode) *progressPrinter {
	return &progressPrinter{w: w, live: mode == detector.ModeLive}
}

func (p *progressPrinter) track(path string) *pathProgress {
	return &pathProgress{printer: p, path: path}
}

type pathProgress struct {
	printer *progressPrinter
	path    string
}

func (t *pathProgress) report(fraction float64) {
	if !t.printer.live {
		return
	}
	t.printer.mu.Lock()
	defer t.printer.mu.Unlock()
	_, _ = fmt.Fprintf(t.printer.w, "\r\033[K%s %3.0f%%", t.path, fraction*100)
}

func (t *pathProgress) done(err error) {
	t.printer.mu.Lock()
	defer t.printer.mu.Unlock()

	if t.printer.live {
		_, _ = io.WriteString(t.printer.w, "\r\033[K")
	}
	switch {
	case err == nil:
		_, _ = fmt.Fprintf(t.printer.w, "%s updated %s\n", style.Check, t.path)
	case domain.IsCancelled(err):
		_, _ = fmt.Fprintf(t.printer.w, "%s cancelled %s\n", style.Warning, t.path)
	default:
		_, _ = fmt.Fprintf(t.printer.w, "%s failed %s\n", style.Cross, t.path)
	}
}
