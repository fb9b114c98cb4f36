package fs

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileHasher = (*Hasher)(nil)

// Hasher computes XXHash checksums of installed files.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return digest.Sum64(), nil
}
