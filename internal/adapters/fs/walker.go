// Package fs provides file system adapters for listing, checking and hashing cache files.
package fs

import (
	"iter"
	"os"
	"path/filepath"

	"go.trai.ch/parcel/internal/core/ports"
)

var _ ports.FileSystem = (*Walker)(nil)

// Walker lists the files of a flat install directory.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// ListFiles yields the names of regular files directly inside dir.
// Subdirectories are not descended into. A missing dir yields nothing.
func (w *Walker) ListFiles(dir string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}

		for _, entry := range entries {
			if !entry.Type().IsRegular() || w.ignored(entry.Name(), ignores) {
				continue
			}
			if !yield(entry.Name()) {
				return
			}
		}
	}
}

func (w *Walker) ignored(name string, ignores []string) bool {
	for _, pattern := range ignores {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
