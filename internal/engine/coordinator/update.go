package coordinator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// RequestUpdate makes the resource at path and every package it depends on
// current. progress, when non-nil, receives the mean completion over the
// stale packages; it gets 1 immediately when nothing is stale.
func (c *Coordinator) RequestUpdate(ctx context.Context, path string, progress ports.ProgressFunc) error {
	err := c.requestUpdate(ctx, path, progress)
	c.publish(domain.Event{Kind: domain.UpdateOutcome(err), Path: path, Err: err})
	return err
}

func (c *Coordinator) requestUpdate(ctx context.Context, path string, progress ports.ProgressFunc) error {
	idx, err := c.deps.Index.Current()
	if err != nil {
		return err
	}
	record, err := lookup(idx, path)
	if err != nil {
		return err
	}

	if c.mode == domain.ModeLocal {
		if progress != nil {
			progress(1)
		}
		return nil
	}
	return c.ensureCurrent(ctx, idx, idx.Closure(record), progress)
}

// ensureCurrent fetches every stale key, attaching to fetches already in
// flight. All fetches run to completion; the first failure is returned and
// completed siblings keep their new versions.
func (c *Coordinator) ensureCurrent(ctx context.Context, idx *domain.Index, keys []string, progress ports.ProgressFunc) error {
	stale := c.staleKeys(idx, keys)
	if len(stale) == 0 {
		if progress != nil {
			progress(1)
		}
		return nil
	}

	if c.mode != domain.ModeSimulated && c.currentTransport() == nil {
		return zerr.With(zerr.Wrap(domain.ErrNoRemoteSource, "update"), "packages", stale)
	}

	scope, gen := c.currentScope()
	mean := newProgressMean(len(stale), progress)

	var g errgroup.Group
	for i, key := range stale {
		op, started := c.join(key, gen)
		if started {
			go c.run(scope, idx, op)
		} else {
			c.deps.Metrics.RequestShared("update")
		}

		detach := op.attach(mean.part(i))
		g.Go(func() error {
			defer detach()
			if err := await(ctx, scope, op.done); err != nil {
				return err
			}
			return op.err
		})
	}
	return g.Wait()
}

func (c *Coordinator) run(scope context.Context, idx *domain.Index, op *pendingFetch) {
	err := c.fetchPackage(scope, idx, op)
	c.finish(op, classify(scope, err))
}

// fetchPackage installs the file behind op.key and records the new version
// for every record sharing it. The version store is only written after the
// file is in place and verified; values loaded from the previous file are
// dropped once it is.
func (c *Coordinator) fetchPackage(ctx context.Context, idx *domain.Index, op *pendingFetch) error {
	records := idx.RecordsForKey(op.key)
	if len(records) == 0 || c.isCurrent(idx, op.key) {
		op.broadcast(1)
		return nil
	}
	first := records[0]

	ctx, span := c.deps.Tracer.Start(ctx, "package.fetch",
		ports.WithAttribute("key", op.key),
		ports.WithAttribute("file", first.FileName),
	)
	defer span.End()

	if c.mode != domain.ModeSimulated {
		if err := c.transfer(ctx, op, first); err != nil {
			span.RecordError(err)
			return err
		}
	}

	if ctx.Err() != nil {
		return context.Canceled
	}

	written := make(map[string]struct{}, 1)
	for i := range records {
		if _, done := written[records[i].FileName]; done {
			continue
		}
		if err := c.deps.Store.Set(records[i].FileName, records[i].ContentHash); err != nil {
			span.RecordError(err)
			return err
		}
		written[records[i].FileName] = struct{}{}
	}
	c.unloadKey(idx, op.key)

	op.broadcast(1)
	return nil
}

func (c *Coordinator) transfer(ctx context.Context, op *pendingFetch, record domain.AssetRecord) error {
	transport := c.currentTransport()
	if transport == nil {
		return zerr.With(zerr.Wrap(domain.ErrNoRemoteSource, "transfer"), "key", op.key)
	}

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return context.Canceled
	}
	defer c.slots.Release(1)

	start := time.Now()
	req := domain.FetchRequest{Key: op.key, FileName: record.FileName, Size: record.Size}
	n, err := transport.Fetch(ctx, req, c.deps.Paths.InstallDir(), op.broadcast)
	err = classify(ctx, err)
	if err == nil {
		err = c.verify(record)
	}
	c.deps.Metrics.TransferFinished(outcome(err), n, time.Since(start))
	return err
}

// verify compares the installed file with the record checksum, when there is one.
// A mismatching file is removed so the package reads as stale.
func (c *Coordinator) verify(record domain.AssetRecord) error {
	if record.Checksum == "" {
		return nil
	}

	path := filepath.Join(c.deps.Paths.InstallDir(), record.FileName)
	sum, err := c.deps.Hasher.ComputeFileHash(path)
	if err != nil {
		return errors.Join(domain.ErrStorageFailed, err)
	}

	if got := domain.FormatChecksum(sum); got != record.Checksum {
		_ = os.Remove(path)
		_ = c.deps.Store.Remove(record.FileName)
		err := zerr.With(zerr.Wrap(domain.ErrIntegrityMismatch, "verify"), "file", record.FileName)
		err = zerr.With(err, "expected", record.Checksum)
		return zerr.With(err, "actual", got)
	}
	return nil
}
