package ports

import (
	"iter"
	"time"
)

//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks

// FileSystem answers the questions the cache asks about its install directory.
type FileSystem interface {
	// ListFiles yields the names of regular files directly inside dir,
	// skipping names matching any ignore pattern.
	ListFiles(dir string, ignores []string) iter.Seq[string]
	// Exists reports whether every name exists in dir.
	Exists(dir string, names ...string) (bool, error)
	// ModTime returns the modification time of name in dir.
	ModTime(dir, name string) (time.Time, error)
	// Remove deletes name from dir. A missing file is not an error.
	Remove(dir, name string) error
}

// FileHasher computes content checksums.
type FileHasher interface {
	// ComputeFileHash returns the XXHash of the file at path.
	ComputeFileHash(path string) (uint64, error)
}
