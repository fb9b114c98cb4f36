package domain

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// ParcelDirName is the name of the working directory holding parcel state.
	ParcelDirName = ".parcel"

	// CacheDirName is the name of the install directory inside ParcelDirName.
	CacheDirName = "cache"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "parcel.yaml"

	// VersionSuffix is appended to a file name to form its version sidecar.
	VersionSuffix = ".version"

	// PartialSuffix marks an in-progress download.
	PartialSuffix = ".part"

	// StateFileName is the bookkeeping file kept in the install directory.
	StateFileName = ".parcel-state.json"

	// CatalogFilePrefix prefixes every catalog artifact name.
	CatalogFilePrefix = "catalog_"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600

	// DefaultMaxTransfers is the default number of simultaneous transfers.
	DefaultMaxTransfers = 4

	// DefaultReclaimCooldown is the minimum interval between automatic reclaim sweeps.
	DefaultReclaimCooldown = 24 * time.Hour

	// DefaultTransferTimeout bounds a single transfer.
	DefaultTransferTimeout = 30 * time.Second

	// PartialMaxAge is the age after which an abandoned partial download is reclaimable.
	PartialMaxAge = time.Hour
)

// DefaultLocalDir returns the default install directory, .parcel/cache.
func DefaultLocalDir() string {
	return filepath.Join(ParcelDirName, CacheDirName)
}

// SidecarName returns the version sidecar name for fileName.
func SidecarName(fileName string) string {
	return fileName + VersionSuffix
}

// IsSidecar reports whether name is a version sidecar.
func IsSidecar(name string) bool {
	return strings.HasSuffix(name, VersionSuffix)
}

// IsPartial reports whether name is an in-progress download.
func IsPartial(name string) bool {
	return strings.HasSuffix(name, PartialSuffix)
}

// CatalogFileName returns the installed catalog snapshot name for a version token.
func CatalogFileName(token string) string {
	return CatalogFilePrefix + token + ".json"
}

// CatalogHashName returns the remote catalog hash probe name for a version token.
func CatalogHashName(token string) string {
	return CatalogFilePrefix + token + ".hash"
}
