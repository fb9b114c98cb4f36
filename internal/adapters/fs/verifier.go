package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"
)

// Exists reports whether every name exists in dir.
func (w *Walker) Exists(dir string, names ...string) (bool, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return false, nil
			}
			return false, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
		}
	}
	return true, nil
}

// ModTime returns the modification time of name in dir.
func (w *Walker) ModTime(dir, name string) (time.Time, error) {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	return info.ModTime(), nil
}

// Remove deletes name from dir. A file that is already gone is not an error.
func (w *Walker) Remove(dir, name string) error {
	path := filepath.Join(dir, name)
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove file"), "path", path)
	}
	return nil
}
