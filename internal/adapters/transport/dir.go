package transport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Transport = (*Dir)(nil)

// Dir copies files from a mirror directory, addressed with file:// URLs.
type Dir struct {
	root    string
	timeout time.Duration
}

// NewDir creates a transport reading from root.
func NewDir(root string, timeout time.Duration) *Dir {
	return &Dir{root: root, timeout: timeout}
}

// Fetch copies root/req.FileName into destDir.
func (t *Dir) Fetch(ctx context.Context, req domain.FetchRequest, destDir string, progress ports.ProgressFunc) (int64, error) {
	tctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	src := filepath.Join(t.root, filepath.FromSlash(req.FileName))
	f, err := os.Open(src) //nolint:gosec // Mirror paths are composed from catalog file names
	if err != nil {
		err = zerr.With(zerr.Wrap(err, "failed to open mirror file"), "path", src)
		return 0, errors.Join(domain.ErrTransferFailed, err)
	}
	defer func() { _ = f.Close() }()

	total := req.Size
	if info, statErr := f.Stat(); statErr == nil {
		total = info.Size()
	}

	n, err := download(tctx, f, total, destDir, req.FileName, progress)
	return n, classify(ctx, tctx, err)
}
