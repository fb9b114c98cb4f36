package coordinator

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

type decodeFunc func(ctx context.Context, file string, record domain.AssetRecord) (any, error)

// Load returns the decoded value of the resource at path. In networked mode
// it first waits for fetches already touching the resource's closure and
// then updates whatever is still stale. Concurrent loads of one path share a
// single decode. A loaded value is served again only while the catalog still
// expects the content it was decoded from.
func Load[T any](ctx context.Context, c *Coordinator, path string, dec ports.Decoder[T]) (T, error) {
	var zero T

	v, err := c.load(ctx, path, func(ctx context.Context, file string, record domain.AssetRecord) (any, error) {
		return dec.Decode(ctx, file, record)
	})
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrTypeMismatch, "load"), "path", path)
		c.publish(domain.Event{Kind: domain.EventLoadFailed, Path: path, Err: err})
		return zero, err
	}
	return typed, nil
}

func (c *Coordinator) load(ctx context.Context, path string, decode decodeFunc) (any, error) {
	v, err := c.loadValue(ctx, path, decode)

	c.deps.Metrics.LoadFinished(outcome(err))
	c.publish(domain.Event{Kind: domain.LoadOutcome(err), Path: path, Err: err})
	return v, err
}

func (c *Coordinator) loadValue(ctx context.Context, path string, decode decodeFunc) (any, error) {
	idx, err := c.deps.Index.Current()
	if err != nil {
		return nil, err
	}
	record, err := lookup(idx, path)
	if err != nil {
		return nil, err
	}

	if c.mode == domain.ModeNetworked {
		keys := idx.Closure(record)
		if err := c.waitInFlight(ctx, keys); err != nil {
			return nil, err
		}
		if err := c.ensureCurrent(ctx, idx, keys, nil); err != nil {
			return nil, err
		}
	}

	if v, ok := c.loadedValue(path, record.ContentHash); ok {
		return v, nil
	}

	scope, gen := c.currentScope()
	leader := false
	ch := c.loads.DoChan(strconv.FormatUint(gen, 10)+"/"+record.ContentHash+"/"+path, func() (any, error) {
		leader = true
		if v, ok := c.loadedValue(path, record.ContentHash); ok {
			return v, nil
		}

		file := filepath.Join(c.deps.Paths.Dir(record), record.FileName)
		v, err := decode(scope, file, record)
		if err != nil {
			if scope.Err() != nil {
				return nil, context.Canceled
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to decode asset"), "path", path)
		}
		if scope.Err() != nil {
			return nil, context.Canceled
		}

		c.remember(path, loadedAsset{value: v, hash: record.ContentHash})
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Shared && !leader {
			c.deps.Metrics.RequestShared("load")
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-scope.Done():
		return nil, context.Canceled
	}
}

// waitInFlight blocks until every fetch already running for keys has finished.
// Their results are ignored; staleness is recomputed afterwards.
func (c *Coordinator) waitInFlight(ctx context.Context, keys []string) error {
	scope, _ := c.currentScope()
	for _, op := range c.inFlight(keys) {
		if err := await(ctx, scope, op.done); err != nil {
			return err
		}
	}
	return nil
}

// loadedAsset is a decoded value and the content hash it was decoded from.
type loadedAsset struct {
	value any
	hash  string
}

// loadedValue returns the value held for path when it was decoded from hash.
func (c *Coordinator) loadedValue(path, hash string) (any, bool) {
	c.loadedMu.RLock()
	defer c.loadedMu.RUnlock()
	entry, ok := c.loaded[path]
	if !ok || entry.hash != hash {
		return nil, false
	}
	return entry.value, true
}

// remember stores entry for path, closing a value of an older version it replaces.
func (c *Coordinator) remember(path string, entry loadedAsset) {
	c.loadedMu.Lock()
	prev, had := c.loaded[path]
	c.loaded[path] = entry
	c.loadedMu.Unlock()

	if had && prev.hash != entry.hash {
		if err := closeValue(path, prev.value); err != nil {
			c.deps.Logger.Error(err)
		}
	}
}

// IsLoaded reports whether a value for path is held.
func (c *Coordinator) IsLoaded(path string) bool {
	c.loadedMu.RLock()
	defer c.loadedMu.RUnlock()
	_, ok := c.loaded[path]
	return ok
}

// Unload drops the value loaded for path, closing it when it is an io.Closer.
// Unloading a path that is not loaded does nothing.
func (c *Coordinator) Unload(path string) error {
	c.loadedMu.Lock()
	entry, ok := c.loaded[path]
	delete(c.loaded, path)
	c.loadedMu.Unlock()

	if !ok {
		return nil
	}
	return closeValue(path, entry.value)
}

// unloadKey drops the values of every record installed by key.
func (c *Coordinator) unloadKey(idx *domain.Index, key string) {
	for _, record := range idx.RecordsForKey(key) {
		if err := c.Unload(record.Path); err != nil {
			c.deps.Logger.Error(err)
		}
	}
}

// UnloadAll drops every loaded value.
func (c *Coordinator) UnloadAll() error {
	c.loadedMu.Lock()
	loaded := c.loaded
	c.loaded = make(map[string]loadedAsset)
	c.loadedMu.Unlock()

	var errs []error
	for path, entry := range loaded {
		if err := closeValue(path, entry.value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func closeValue(path string, v any) error {
	closer, ok := v.(io.Closer)
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close loaded asset"), "path", path)
	}
	return nil
}
