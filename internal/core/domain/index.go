package domain

import (
	"context"
	"runtime"
	"slices"
)

// IndexBatchSize is the number of records indexed between scheduler yields.
const IndexBatchSize = 1000

// Index answers record lookups against one catalog snapshot.
// It is never mutated after BuildIndex returns.
type Index struct {
	catalog   *Catalog
	byPath    map[string]*AssetRecord
	byID      map[string]*AssetRecord
	byPackage map[string][]*AssetRecord
	byFile    map[string]*AssetRecord
	resolver  *Resolver
}

// BuildIndex indexes c by path, stable ID and package.
// Work is split into batches of IndexBatchSize; between batches the goroutine
// yields and ctx is checked so large catalogs do not monopolise a thread.
func BuildIndex(ctx context.Context, c *Catalog) (*Index, error) {
	if c == nil {
		return nil, ErrCatalogUnavailable
	}

	idx := &Index{
		catalog:   c,
		byPath:    make(map[string]*AssetRecord, len(c.Records)),
		byID:      make(map[string]*AssetRecord),
		byPackage: make(map[string][]*AssetRecord),
		byFile:    make(map[string]*AssetRecord),
		resolver:  NewResolver(c.Dependencies),
	}

	for start := 0; start < len(c.Records); start += IndexBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+IndexBatchSize, len(c.Records))
		for i := start; i < end; i++ {
			r := &c.Records[i]
			idx.byPath[r.Path] = r
			if r.ID != "" {
				idx.byID[r.ID] = r
			}
			if r.IsPackaged() {
				pkg := r.Package.String()
				idx.byPackage[pkg] = append(idx.byPackage[pkg], r)
			} else {
				idx.byFile[r.FileName] = r
			}
		}

		runtime.Gosched()
	}

	return idx, nil
}

// Catalog returns the snapshot backing the index.
func (idx *Index) Catalog() *Catalog {
	return idx.catalog
}

// ByPath returns the record for a resource path.
func (idx *Index) ByPath(path string) (AssetRecord, bool) {
	r, ok := idx.byPath[path]
	if !ok {
		return AssetRecord{}, false
	}
	return *r, true
}

// ByID returns the record with the given stable ID.
func (idx *Index) ByID(id string) (AssetRecord, bool) {
	r, ok := idx.byID[id]
	if !ok {
		return AssetRecord{}, false
	}
	return *r, true
}

// RecordsForKey returns every record fetched under key: all members of a
// package, or the single record whose file name is key.
func (idx *Index) RecordsForKey(key string) []AssetRecord {
	if members, ok := idx.byPackage[key]; ok {
		out := make([]AssetRecord, len(members))
		for i, r := range members {
			out[i] = *r
		}
		return out
	}
	if r, ok := idx.byFile[key]; ok {
		return []AssetRecord{*r}
	}
	return nil
}

// Packages returns every package name, sorted.
func (idx *Index) Packages() []string {
	out := make([]string, 0, len(idx.byPackage))
	for pkg := range idx.byPackage {
		out = append(out, pkg)
	}
	slices.Sort(out)
	return out
}

// Records returns every record in catalog order.
func (idx *Index) Records() []AssetRecord {
	return slices.Clone(idx.catalog.Records)
}

// FileNames returns the set of file names referenced by the catalog.
func (idx *Index) FileNames() map[string]struct{} {
	out := make(map[string]struct{}, len(idx.catalog.Records))
	for i := range idx.catalog.Records {
		out[idx.catalog.Records[i].FileName] = struct{}{}
	}
	return out
}

// Closure returns the fetch keys needed for record: its own key plus the
// transitive dependency closure of its package.
func (idx *Index) Closure(record AssetRecord) []string {
	if !record.IsPackaged() {
		return []string{record.FileName}
	}
	pkg := record.Package.String()
	keys := []string{pkg}
	for _, dep := range idx.resolver.Closure(pkg) {
		if dep != pkg {
			keys = append(keys, dep)
		}
	}
	return keys
}

// Resolver exposes the dependency resolver for the indexed catalog.
func (idx *Index) Resolver() *Resolver {
	return idx.resolver
}
