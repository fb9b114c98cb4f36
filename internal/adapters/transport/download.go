// Package transport implements ports.Transport for HTTP, local directory and S3 remotes.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

const copyBufferSize = 32 * 1024

// download streams r into destDir/fileName. Bytes land in a hidden partial
// file first; the destination only appears after a successful rename.
// total is the expected size, or zero when unknown. Read and context errors
// are returned unclassified; callers pass them through classify.
func download(ctx context.Context, r io.Reader, total int64, destDir, fileName string, progress ports.ProgressFunc) (int64, error) {
	if err := os.MkdirAll(destDir, domain.DirPerm); err != nil {
		return 0, storageError(err, fileName)
	}

	tmpFile, err := os.CreateTemp(destDir, "."+filepath.Base(fileName)+"-*"+domain.PartialSuffix)
	if err != nil {
		return 0, storageError(err, fileName)
	}
	tmpName := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	written, err := copyWithProgress(ctx, tmpFile, r, total, progress)
	if err != nil {
		_ = tmpFile.Close()
		return written, err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return written, storageError(err, fileName)
	}
	if err := tmpFile.Close(); err != nil {
		return written, storageError(err, fileName)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return written, storageError(err, fileName)
	}
	if err := os.Rename(tmpName, filepath.Join(destDir, fileName)); err != nil {
		return written, storageError(err, fileName)
	}
	committed = true

	if progress != nil {
		progress(1)
	}
	return written, nil
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ports.ProgressFunc) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, errors.Join(domain.ErrStorageFailed, err)
			}
			written += int64(n)
			if progress != nil && total > 0 {
				progress(min(float64(written)/float64(total), 1))
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// classify maps a transfer error onto the domain taxonomy. Cancellation of
// the caller's ctx passes through unchanged; transferCtx is the per-transfer
// context whose deadline marks a timeout.
func classify(ctx, transferCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTransferFailed) ||
		errors.Is(err, domain.ErrTransferTimeout) ||
		errors.Is(err, domain.ErrStorageFailed) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(transferCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(domain.ErrTransferTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(domain.ErrTransferTimeout, err)
	}
	return errors.Join(domain.ErrTransferFailed, err)
}

func storageError(err error, fileName string) error {
	return errors.Join(domain.ErrStorageFailed, zerr.With(zerr.Wrap(err, "failed to install file"), "file", fileName))
}

// withTimeout bounds a single transfer. A zero timeout leaves ctx unbounded.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
