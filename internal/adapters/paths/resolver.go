// Package paths maps records to the directory their files are read from.
package paths

import (
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
)

var _ ports.PathResolver = (*Resolver)(nil)

// Resolver places downloads in the install directory and, in local mode,
// reads content from the shared directory shipped with the host.
type Resolver struct {
	installDir string
	sharedDir  string
	mode       domain.Mode
}

// New creates a Resolver.
func New(installDir, sharedDir string, mode domain.Mode) *Resolver {
	return &Resolver{installDir: installDir, sharedDir: sharedDir, mode: mode}
}

// InstallDir returns the writable install directory.
func (r *Resolver) InstallDir() string {
	return r.installDir
}

// Dir returns the directory record's file is read from.
func (r *Resolver) Dir(_ domain.AssetRecord) string {
	if r.mode == domain.ModeLocal && r.sharedDir != "" {
		return r.sharedDir
	}
	return r.installDir
}
