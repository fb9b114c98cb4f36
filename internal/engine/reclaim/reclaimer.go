// Package reclaim deletes installed files the current catalog no longer references.
package reclaim

import (
	"context"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the number of files deleted per batch.
const ChunkSize = 256

// IndexSource yields the index of the current catalog.
type IndexSource interface {
	Current() (*domain.Index, error)
}

// Invalidator stops work that refers to installed files.
type Invalidator interface {
	// CancelAndWait cancels in-flight fetches and waits until they stopped
	// writing to the install directory.
	CancelAndWait(ctx context.Context) error
	// UnloadAll drops every loaded value.
	UnloadAll() error
}

// Publisher receives lifecycle events.
type Publisher interface {
	Publish(ev domain.Event)
}

// Deps bundles the collaborators of a Reclaimer.
type Deps struct {
	Index       IndexSource
	Store       ports.VersionStore
	FS          ports.FileSystem
	Logger      ports.Logger
	Tracer      ports.Tracer
	Metrics     ports.Metrics
	Publisher   Publisher
	Invalidator Invalidator
}

// Result reports what a sweep did.
type Result struct {
	// Deleted lists removed file names, sorted.
	Deleted []string
	// Failed lists file names that could not be removed, sorted.
	Failed []string
	// Skipped is set when the cooldown suppressed the sweep.
	Skipped bool
}

// Reclaimer deletes unreferenced files from the install directory.
// Sweeps are serialized.
type Reclaimer struct {
	deps       Deps
	installDir string
	cooldown   time.Duration
	now        func() time.Time

	mu          sync.Mutex
	catalogFile string
}

// New creates a Reclaimer for installDir. cooldown is the minimum time between
// two unforced ReclaimUnused sweeps.
func New(deps Deps, installDir string, cooldown time.Duration) *Reclaimer {
	return &Reclaimer{
		deps:       deps,
		installDir: installDir,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

// SetCatalogFile names the installed catalog snapshot, which is always kept.
func (r *Reclaimer) SetCatalogFile(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogFile = name
}

// ReclaimUnused deletes every file the current catalog does not reference,
// together with its version entry. Unless force is set, a sweep within the
// cooldown of the previous one does nothing. Partial downloads are only
// removed once they are older than domain.PartialMaxAge.
func (r *Reclaimer) ReclaimUnused(ctx context.Context, force bool) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !force {
		if last, ok := r.lastReclaim(); ok && now.Sub(last) < r.cooldown {
			return Result{Skipped: true}, nil
		}
	}

	idx, err := r.deps.Index.Current()
	if err != nil {
		return Result{}, err
	}

	ctx, span := r.deps.Tracer.Start(ctx, "cache.reclaim_unused")
	defer span.End()

	referenced := idx.FileNames()
	if r.catalogFile != "" {
		referenced[r.catalogFile] = struct{}{}
	}

	var victims []string
	for name := range r.deps.FS.ListFiles(r.installDir, managedIgnores) {
		if domain.IsPartial(name) {
			if r.partialExpired(name, now) {
				victims = append(victims, name)
			}
			continue
		}
		if _, ok := referenced[name]; !ok {
			victims = append(victims, name)
		}
	}

	res, err := r.deleteFiles(ctx, victims)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	r.removeOrphanEntries()

	if err := r.writeState(now); err != nil {
		r.deps.Logger.Warn("failed to record reclaim time: " + err.Error())
	}

	r.report(res)
	span.SetAttribute("deleted", len(res.Deleted))
	return res, nil
}

// ReclaimExplicit deletes fileNames and their version entries regardless of
// the cooldown or whether the catalog still references them.
func (r *Reclaimer) ReclaimExplicit(ctx context.Context, fileNames []string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.deps.Tracer.Start(ctx, "cache.reclaim_explicit")
	defer span.End()

	names := slices.Clone(fileNames)
	slices.Sort(names)
	names = slices.Compact(names)

	res, err := r.deleteFiles(ctx, names)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	r.report(res)
	return res, nil
}

// ReclaimAll cancels in-flight fetches and drops every loaded value, then
// deletes every managed file and clears the version store.
func (r *Reclaimer) ReclaimAll(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.deps.Tracer.Start(ctx, "cache.reclaim_all")
	defer span.End()

	if r.deps.Invalidator != nil {
		if err := r.deps.Invalidator.CancelAndWait(ctx); err != nil {
			span.RecordError(err)
			return Result{}, err
		}
		if err := r.deps.Invalidator.UnloadAll(); err != nil {
			r.deps.Logger.Error(err)
		}
	}

	victims := slices.Collect(r.deps.FS.ListFiles(r.installDir, managedIgnores))
	res, err := r.deleteFiles(ctx, victims)
	if err != nil {
		span.RecordError(err)
		return res, err
	}

	if err := r.deps.Store.Clear(); err != nil {
		span.RecordError(err)
		return res, err
	}

	r.report(res)
	return res, nil
}

// managedIgnores excludes sidecars and the bookkeeping file from sweeps.
var managedIgnores = []string{"*" + domain.VersionSuffix, domain.StateFileName}

// deleteFiles removes names in chunks, fanning each chunk out over the CPUs.
// A file that cannot be removed is logged and counted; it never stops the sweep.
func (r *Reclaimer) deleteFiles(ctx context.Context, names []string) (Result, error) {
	var (
		mu  sync.Mutex
		res Result
	)

	for start := 0; start < len(names); start += ChunkSize {
		if err := ctx.Err(); err != nil {
			return finalize(res), err
		}

		end := min(start+ChunkSize, len(names))
		var g errgroup.Group
		g.SetLimit(runtime.NumCPU())
		for _, name := range names[start:end] {
			g.Go(func() error {
				err := r.remove(name)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					r.deps.Logger.Error(err)
					res.Failed = append(res.Failed, name)
					return nil
				}
				res.Deleted = append(res.Deleted, name)
				return nil
			})
		}
		_ = g.Wait()

		runtime.Gosched()
	}

	return finalize(res), nil
}

func (r *Reclaimer) remove(name string) error {
	if name == "" || filepath.Base(name) != name {
		return zerr.With(zerr.Wrap(domain.ErrReclaimFailed, "invalid file name"), "file", name)
	}
	if err := r.deps.FS.Remove(r.installDir, name); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrReclaimFailed, err.Error()), "file", name)
	}
	return r.deps.Store.Remove(name)
}

// removeOrphanEntries forgets version entries whose data file is gone.
func (r *Reclaimer) removeOrphanEntries() {
	for name := range r.deps.Store.Entries() {
		exists, err := r.deps.FS.Exists(r.installDir, name)
		if err != nil || exists {
			continue
		}
		if err := r.deps.Store.Remove(name); err != nil {
			r.deps.Logger.Error(err)
		}
	}
}

func (r *Reclaimer) partialExpired(name string, now time.Time) bool {
	modified, err := r.deps.FS.ModTime(r.installDir, name)
	if err != nil {
		return false
	}
	return now.Sub(modified) > domain.PartialMaxAge
}

func (r *Reclaimer) report(res Result) {
	if len(res.Deleted) > 0 {
		r.deps.Logger.Info(FormatSummary(res.Deleted))
	}
	r.deps.Metrics.FilesReclaimed(len(res.Deleted), len(res.Failed))
	if r.deps.Publisher != nil {
		r.deps.Publisher.Publish(domain.Event{Kind: domain.EventCacheReclaimed, Count: len(res.Deleted)})
	}
}

func finalize(res Result) Result {
	slices.Sort(res.Deleted)
	slices.Sort(res.Failed)
	return res
}
