package domain

import (
	"context"
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrRecordNotFound is returned when a resource path or ID has no record in the current catalog.
	ErrRecordNotFound = zerr.New("record not found")

	// ErrCatalogUnavailable is returned when no catalog has been loaded or indexing failed.
	ErrCatalogUnavailable = zerr.New("catalog unavailable")

	// ErrTransferFailed is returned when the transport could not deliver a package.
	ErrTransferFailed = zerr.New("transfer failed")

	// ErrTransferTimeout is returned when a transfer exceeded its deadline.
	ErrTransferTimeout = zerr.New("transfer timed out")

	// ErrIntegrityMismatch is returned when a fetched file does not match its catalog checksum.
	ErrIntegrityMismatch = zerr.New("integrity mismatch")

	// ErrStorageFailed is returned when the install directory cannot be written.
	ErrStorageFailed = zerr.New("storage failure")

	// ErrDuplicateRecord is returned when a catalog lists the same resource path twice.
	ErrDuplicateRecord = zerr.New("duplicate record path")

	// ErrInconsistentPackage is returned when records of one package disagree on file name or hash.
	ErrInconsistentPackage = zerr.New("records of a package must share file name and content hash")

	// ErrKeyCollision is returned when a package name equals the file name of a single-file asset.
	ErrKeyCollision = zerr.New("package name collides with a single-file asset")

	// ErrInvalidRecord is returned when a record is missing a path or file name.
	ErrInvalidRecord = zerr.New("invalid record")

	// ErrTypeMismatch is returned when a loaded asset is requested as a different type.
	ErrTypeMismatch = zerr.New("loaded asset has a different type")

	// ErrNotInitialized is returned when an operation runs before Initialize.
	ErrNotInitialized = zerr.New("cache not initialized")

	// ErrNoRemoteSource is returned when a transfer is needed but no remote source is set.
	ErrNoRemoteSource = zerr.New("no remote source configured")

	// ErrUnsupportedScheme is returned when a remote URL uses an unknown scheme.
	ErrUnsupportedScheme = zerr.New("unsupported remote scheme")

	// ErrInvalidMode is returned when an operating mode is not recognised.
	ErrInvalidMode = zerr.New("invalid mode, expected 'networked', 'local' or 'simulated'")

	// ErrCatalogDecodeFailed is returned when a catalog snapshot cannot be decoded.
	ErrCatalogDecodeFailed = zerr.New("failed to decode catalog")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find parcel.yaml")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrVersionWriteFailed is returned when a version sidecar cannot be written.
	ErrVersionWriteFailed = zerr.New("failed to write version entry")

	// ErrVersionRemoveFailed is returned when a version sidecar cannot be removed.
	ErrVersionRemoveFailed = zerr.New("failed to remove version entry")

	// ErrReclaimFailed is returned when one or more cache files could not be deleted.
	ErrReclaimFailed = zerr.New("failed to reclaim cache files")
)

// IsRetryable reports whether err is a transient transfer problem worth retrying.
// Integrity mismatches count as transfer failures.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, ErrTransferTimeout) ||
		errors.Is(err, ErrIntegrityMismatch)
}

// IsCancelled reports whether err stems from cooperative cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrTransferTimeout)
}
