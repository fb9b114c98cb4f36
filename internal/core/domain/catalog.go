package domain

import (
	"encoding/json"
	"fmt"
	"slices"

	"go.trai.ch/zerr"
)

// AssetRecord describes one addressable resource in a catalog.
type AssetRecord struct {
	// Path is the resource path callers request, unique within a catalog.
	Path string `json:"path"`
	// Package groups co-packaged resources that share one physical file.
	// Empty for single-file assets.
	Package InternedString `json:"package,omitzero"`
	// FileName is the installed file name, relative to the install directory.
	FileName string `json:"file"`
	// ContentHash identifies the version of FileName that this catalog expects.
	ContentHash string `json:"hash"`
	// ID is an optional stable identifier that survives path renames.
	ID string `json:"id,omitempty"`
	// Group is an optional label used to filter required updates.
	Group InternedString `json:"group,omitzero"`
	// Checksum is an optional xxhash (hex) of the physical file used to verify transfers.
	Checksum string `json:"checksum,omitempty"`
	// Size is the expected size of the physical file in bytes.
	Size int64 `json:"size,omitempty"`
}

// Key returns the unit of fetching for the record: its package name, or its
// file name when the record is a single-file asset.
func (r *AssetRecord) Key() string {
	if r.Package.IsZero() {
		return r.FileName
	}
	return r.Package.String()
}

// FormatChecksum renders a file hash the way AssetRecord.Checksum stores it.
func FormatChecksum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// IsPackaged reports whether the record belongs to a package.
func (r *AssetRecord) IsPackaged() bool {
	return !r.Package.IsZero()
}

// Catalog is an immutable snapshot of every record the server currently publishes.
type Catalog struct {
	// Version is the catalog version token.
	Version string `json:"version"`
	// Hash identifies the snapshot; it is compared with the remote probe on refresh.
	Hash string `json:"hash"`
	// Records lists every resource.
	Records []AssetRecord `json:"records"`
	// Dependencies maps a package to the packages it directly depends on.
	Dependencies map[string][]string `json:"dependencies,omitempty"`
}

// DecodeCatalog parses a catalog snapshot and validates it.
func DecodeCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, zerr.Wrap(err, ErrCatalogDecodeFailed.Error())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Encode serializes the catalog snapshot.
func (c *Catalog) Encode() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Validate checks the structural invariants of the catalog. Paths are unique
// and carry a file name, each package has one file name and content hash, and
// no package is named after a single-file asset.
func (c *Catalog) Validate() error {
	paths := make(map[string]struct{}, len(c.Records))
	type packageFile struct{ fileName, hash string }
	packages := make(map[string]packageFile)
	singles := make(map[string]struct{})

	for i := range c.Records {
		r := &c.Records[i]
		if r.Path == "" || r.FileName == "" {
			return zerr.With(zerr.Wrap(ErrInvalidRecord, "validate catalog"), "index", i)
		}
		if _, dup := paths[r.Path]; dup {
			return zerr.With(zerr.Wrap(ErrDuplicateRecord, "validate catalog"), "path", r.Path)
		}
		paths[r.Path] = struct{}{}

		if !r.IsPackaged() {
			if _, clash := packages[r.FileName]; clash {
				return keyCollision(r.FileName, r.Path)
			}
			singles[r.FileName] = struct{}{}
			continue
		}
		pkg := r.Package.String()
		want, seen := packages[pkg]
		if !seen {
			if _, clash := singles[pkg]; clash {
				return keyCollision(pkg, r.Path)
			}
			packages[pkg] = packageFile{fileName: r.FileName, hash: r.ContentHash}
			continue
		}
		if want.fileName != r.FileName || want.hash != r.ContentHash {
			err := zerr.With(zerr.Wrap(ErrInconsistentPackage, "validate catalog"), "package", pkg)
			return zerr.With(err, "path", r.Path)
		}
	}
	return nil
}

// keyCollision reports a package and a single-file asset sharing one key.
func keyCollision(key, path string) error {
	err := zerr.With(zerr.Wrap(ErrKeyCollision, "validate catalog"), "key", key)
	return zerr.With(err, "path", path)
}

// DependenciesOf returns the direct dependencies of pkg, sorted.
func (c *Catalog) DependenciesOf(pkg string) []string {
	deps := slices.Clone(c.Dependencies[pkg])
	slices.Sort(deps)
	return slices.Compact(deps)
}
