package coordinator

import (
	"context"
	"runtime"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/zerr"
)

const staleScanBatch = 1000

// isCurrent reports whether the package or single-file asset behind key is
// installed at the version the catalog expects. Keys without records in the
// catalog have nothing to install and count as current.
func (c *Coordinator) isCurrent(idx *domain.Index, key string) bool {
	records := idx.RecordsForKey(key)
	if len(records) == 0 {
		return true
	}

	if c.mode != domain.ModeSimulated {
		exists, err := c.deps.FS.Exists(c.deps.Paths.InstallDir(), records[0].FileName)
		if err != nil || !exists {
			return false
		}
	}

	for i := range records {
		hash, ok := c.deps.Store.Get(records[i].FileName)
		if !ok || hash != records[i].ContentHash {
			return false
		}
	}
	return true
}

func (c *Coordinator) staleKeys(idx *domain.Index, keys []string) []string {
	var stale []string
	for _, key := range keys {
		if !c.isCurrent(idx, key) {
			stale = append(stale, key)
		}
	}
	return stale
}

// IsCurrent reports whether the resource at path and every package it
// depends on are installed at their catalog versions.
func (c *Coordinator) IsCurrent(path string) (bool, error) {
	idx, err := c.deps.Index.Current()
	if err != nil {
		return false, err
	}
	record, err := lookup(idx, path)
	if err != nil {
		return false, err
	}
	return len(c.staleKeys(idx, idx.Closure(record))) == 0, nil
}

// RequiredUpdates lists every record whose package is stale, in catalog order.
// A non-empty group restricts the result to records of that group.
// Local mode never downloads, so nothing is required there.
func (c *Coordinator) RequiredUpdates(ctx context.Context, group string) ([]domain.AssetRecord, error) {
	idx, err := c.deps.Index.Current()
	if err != nil {
		return nil, err
	}
	if c.mode == domain.ModeLocal {
		return nil, nil
	}

	verdicts := make(map[string]bool)
	var out []domain.AssetRecord
	for i, record := range idx.Records() {
		if i > 0 && i%staleScanBatch == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			runtime.Gosched()
		}
		if group != "" && record.Group.String() != group {
			continue
		}

		key := record.Key()
		current, seen := verdicts[key]
		if !seen {
			current = c.isCurrent(idx, key)
			verdicts[key] = current
		}
		if !current {
			out = append(out, record)
		}
	}
	return out, nil
}

func lookup(idx *domain.Index, path string) (domain.AssetRecord, error) {
	record, ok := idx.ByPath(path)
	if !ok {
		return domain.AssetRecord{}, zerr.With(zerr.Wrap(domain.ErrRecordNotFound, "lookup"), "path", path)
	}
	return record, nil
}
