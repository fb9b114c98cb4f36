// Package coordinator deduplicates package fetches and asset loads and keeps
// installed files coherent with the current catalog.
package coordinator

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// IndexSource yields the index of the current catalog.
type IndexSource interface {
	Current() (*domain.Index, error)
}

// Publisher receives lifecycle events.
type Publisher interface {
	Publish(ev domain.Event)
}

// Deps bundles the collaborators of a Coordinator.
type Deps struct {
	Index     IndexSource
	Store     ports.VersionStore
	FS        ports.FileSystem
	Hasher    ports.FileHasher
	Paths     ports.PathResolver
	Logger    ports.Logger
	Tracer    ports.Tracer
	Metrics   ports.Metrics
	Publisher Publisher
}

// Coordinator runs updates and loads under one cancellation scope.
type Coordinator struct {
	deps  Deps
	mode  domain.Mode
	slots *semaphore.Weighted

	transportMu sync.RWMutex
	transport   ports.Transport

	scopeMu     sync.Mutex
	scope       context.Context //nolint:containedctx // Scope outlives individual requests
	cancelScope context.CancelFunc
	gen         uint64

	fetchMu sync.Mutex
	fetches map[string]*pendingFetch

	loads    singleflight.Group
	loadedMu sync.RWMutex
	loaded   map[string]loadedAsset
}

// New creates a Coordinator. maxTransfers bounds simultaneous transfers; values
// below one fall back to domain.DefaultMaxTransfers.
func New(deps Deps, mode domain.Mode, maxTransfers int) *Coordinator {
	if maxTransfers < 1 {
		maxTransfers = domain.DefaultMaxTransfers
	}
	scope, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		deps:        deps,
		mode:        mode,
		slots:       semaphore.NewWeighted(int64(maxTransfers)),
		scope:       scope,
		cancelScope: cancel,
		fetches:     make(map[string]*pendingFetch),
		loaded:      make(map[string]loadedAsset),
	}
}

// SetTransport replaces the transport used for subsequent fetches.
func (c *Coordinator) SetTransport(t ports.Transport) {
	c.transportMu.Lock()
	defer c.transportMu.Unlock()
	c.transport = t
}

func (c *Coordinator) currentTransport() ports.Transport {
	c.transportMu.RLock()
	defer c.transportMu.RUnlock()
	return c.transport
}

// Mode reports the operating mode.
func (c *Coordinator) Mode() domain.Mode {
	return c.mode
}

// CancelAll aborts every in-flight fetch and load and opens a fresh scope.
// Callers waiting on cancelled work receive context.Canceled; version
// entries of unfinished fetches are left untouched.
func (c *Coordinator) CancelAll() {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()

	c.cancelScope()
	c.scope, c.cancelScope = context.WithCancel(context.Background())
	c.gen++
}

// CancelAndWait cancels like CancelAll and then blocks until every fetch
// started under the cancelled scope has finished, so none of them writes to
// the install directory or the version store afterwards.
func (c *Coordinator) CancelAndWait(ctx context.Context) error {
	c.CancelAll()
	_, gen := c.currentScope()

	c.fetchMu.Lock()
	var pending []*pendingFetch
	for _, op := range c.fetches {
		if op.gen < gen {
			pending = append(pending, op)
		}
	}
	c.fetchMu.Unlock()

	for _, op := range pending {
		select {
		case <-op.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close cancels the current scope without opening a new one.
func (c *Coordinator) Close() {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()
	c.cancelScope()
}

func (c *Coordinator) currentScope() (context.Context, uint64) {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()
	return c.scope, c.gen
}

func (c *Coordinator) publish(ev domain.Event) {
	if c.deps.Publisher != nil {
		c.deps.Publisher.Publish(ev)
	}
}

// await blocks until done closes, ctx ends or scope is cancelled.
func await(ctx, scope context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-scope.Done():
		return context.Canceled
	}
}

// classify maps a fetch failure onto the domain taxonomy. Cancellation of
// scope is reported as context.Canceled, never as a transfer failure.
func classify(scope context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case scope.Err() != nil || errors.Is(err, context.Canceled):
		return context.Canceled
	case errors.Is(err, domain.ErrTransferFailed),
		errors.Is(err, domain.ErrTransferTimeout),
		errors.Is(err, domain.ErrIntegrityMismatch),
		errors.Is(err, domain.ErrStorageFailed),
		errors.Is(err, domain.ErrNoRemoteSource):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Join(domain.ErrTransferTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(domain.ErrTransferTimeout, err)
	}
	return errors.Join(domain.ErrTransferFailed, err)
}

// outcome labels a result for metrics.
func outcome(err error) string {
	switch domain.UpdateOutcome(err) {
	case domain.EventUpdateCompleted:
		return "completed"
	case domain.EventUpdateCancelled:
		return "cancelled"
	case domain.EventUpdateTimeout:
		return "timeout"
	default:
		return "failed"
	}
}
