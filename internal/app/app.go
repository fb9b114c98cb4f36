// Package app implements the host-facing facade of the parcel cache.
package app

import (
	"context"
	"errors"
	"os"
	"sync"

	"go.trai.ch/parcel/internal/adapters/paths" //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/parcel/internal/engine/catalog"
	"go.trai.ch/parcel/internal/engine/coordinator"
	"go.trai.ch/parcel/internal/engine/events"
	"go.trai.ch/parcel/internal/engine/reclaim"
	"go.trai.ch/zerr"
)

// App keeps a local content cache coherent with a remote catalog.
// It must be initialized with Initialize or Configure before use.
type App struct {
	logger     ports.Logger
	tracer     ports.Tracer
	metrics    ports.Metrics
	fs         ports.FileSystem
	hasher     ports.FileHasher
	stores     ports.VersionStoreFactory
	transports ports.TransportFactory
	broker     *events.Broker
	holder     *catalog.Holder

	mu       sync.RWMutex
	settings domain.Settings
	remote   remoteSource
	session  *session
}

type remoteSource struct {
	url       string
	token     string
	transport ports.Transport
}

// session holds the components bound to one install directory.
type session struct {
	installDir string
	sharedDir  string
	store      ports.VersionStore
	refresher  *catalog.Refresher
	coord      *coordinator.Coordinator
	reclaimer  *reclaim.Reclaimer
}

// New creates an App with default settings.
func New(
	logger ports.Logger,
	tracer ports.Tracer,
	metrics ports.Metrics,
	fs ports.FileSystem,
	hasher ports.FileHasher,
	stores ports.VersionStoreFactory,
	transports ports.TransportFactory,
) *App {
	return &App{
		logger:     logger,
		tracer:     tracer,
		metrics:    metrics,
		fs:         fs,
		hasher:     hasher,
		stores:     stores,
		transports: transports,
		broker:     events.NewBroker(),
		holder:     catalog.NewHolder(),
		settings:   domain.DefaultSettings(),
	}
}

// Initialize binds the app to localDir, the writable install directory, and
// sharedDir, the read-only content directory used in local mode. Calling it
// again cancels outstanding work and rebinds to the new directories.
func (a *App) Initialize(localDir, sharedDir string) error {
	if localDir == "" {
		return zerr.Wrap(domain.ErrNotInitialized, "install directory required")
	}
	if err := os.MkdirAll(localDir, domain.DirPerm); err != nil {
		err = zerr.With(zerr.Wrap(err, "failed to create install directory"), "dir", localDir)
		return errors.Join(domain.ErrStorageFailed, err)
	}

	store := a.stores.Open(localDir)
	if err := store.Load(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		if err := a.closeSession(a.session); err != nil {
			a.logger.Error(err)
		}
	}

	settings := a.settings
	coord := coordinator.New(coordinator.Deps{
		Index:     a.holder,
		Store:     store,
		FS:        a.fs,
		Hasher:    a.hasher,
		Paths:     paths.New(localDir, sharedDir, settings.Mode),
		Logger:    a.logger,
		Tracer:    a.tracer,
		Metrics:   a.metrics,
		Publisher: a.broker,
	}, settings.Mode, settings.MaxTransfers)
	coord.SetTransport(a.remote.transport)

	reclaimer := reclaim.New(reclaim.Deps{
		Index:       a.holder,
		Store:       store,
		FS:          a.fs,
		Logger:      a.logger,
		Tracer:      a.tracer,
		Metrics:     a.metrics,
		Publisher:   a.broker,
		Invalidator: coord,
	}, localDir, settings.ReclaimCooldown)
	if a.remote.token != "" {
		reclaimer.SetCatalogFile(domain.CatalogFileName(a.remote.token))
	}

	a.holder.Clear()
	a.session = &session{
		installDir: localDir,
		sharedDir:  sharedDir,
		store:      store,
		refresher:  catalog.NewRefresher(store, a.fs, a.logger, a.tracer, a.holder, localDir),
		coord:      coord,
		reclaimer:  reclaimer,
	}
	return nil
}

// SetRemoteSource selects where catalogs and packages are downloaded from and
// which catalog version token to track. An empty url removes the remote.
func (a *App) SetRemoteSource(url, token string) error {
	var transport ports.Transport
	if url != "" {
		a.mu.RLock()
		timeout := a.settings.TransferTimeout
		a.mu.RUnlock()

		t, err := a.transports.New(url, timeout)
		if err != nil {
			return err
		}
		transport = t
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.remote = remoteSource{url: url, token: token, transport: transport}
	if a.session != nil {
		a.session.coord.SetTransport(transport)
		if token != "" {
			a.session.reclaimer.SetCatalogFile(domain.CatalogFileName(token))
		}
	}
	return nil
}

// RefreshCatalog makes the catalog for the configured token current, then
// sweeps files the new catalog no longer references. A failed sweep is
// logged and does not fail the refresh.
func (a *App) RefreshCatalog(ctx context.Context) error {
	s, err := a.current()
	if err != nil {
		return err
	}

	a.mu.RLock()
	remote := a.remote
	a.mu.RUnlock()

	if remote.token == "" {
		return zerr.Wrap(domain.ErrCatalogUnavailable, "no catalog version configured")
	}

	idx, err := s.refresher.Refresh(ctx, remote.transport, remote.token)
	if err != nil {
		return err
	}

	s.reclaimer.SetCatalogFile(domain.CatalogFileName(remote.token))
	if _, err := s.reclaimer.ReclaimUnused(ctx, false); err != nil {
		if domain.IsCancelled(err) {
			return err
		}
		a.logger.Error(err)
	}

	a.broker.Publish(domain.Event{
		Kind:  domain.EventCatalogRefreshed,
		Path:  domain.CatalogFileName(remote.token),
		Count: len(idx.Records()),
	})
	return nil
}

// GetRecord returns the record for path in the current catalog.
func (a *App) GetRecord(path string) (domain.AssetRecord, error) {
	idx, err := a.holder.Current()
	if err != nil {
		return domain.AssetRecord{}, err
	}
	record, ok := idx.ByPath(path)
	if !ok {
		return domain.AssetRecord{}, zerr.With(zerr.Wrap(domain.ErrRecordNotFound, "get record"), "path", path)
	}
	return record, nil
}

// GetRecordByID returns the record with the stable identifier id.
func (a *App) GetRecordByID(id string) (domain.AssetRecord, error) {
	idx, err := a.holder.Current()
	if err != nil {
		return domain.AssetRecord{}, err
	}
	record, ok := idx.ByID(id)
	if !ok {
		return domain.AssetRecord{}, zerr.With(zerr.Wrap(domain.ErrRecordNotFound, "get record"), "id", id)
	}
	return record, nil
}

// RequestUpdate makes path and every package it depends on current.
// progress, which may be nil, receives a fraction in [0, 1].
func (a *App) RequestUpdate(ctx context.Context, path string, progress ports.ProgressFunc) error {
	s, err := a.current()
	if err != nil {
		return err
	}
	return s.coord.RequestUpdate(ctx, path, progress)
}

// Load updates path if needed and returns its decoded value. Concurrent
// loads of one path share a single decode.
func Load[T any](ctx context.Context, a *App, path string, dec ports.Decoder[T]) (T, error) {
	s, err := a.current()
	if err != nil {
		var zero T
		return zero, err
	}
	return coordinator.Load(ctx, s.coord, path, dec)
}

// IsCurrent reports whether the installed copy of path matches the catalog.
func (a *App) IsCurrent(path string) (bool, error) {
	s, err := a.current()
	if err != nil {
		return false, err
	}
	return s.coord.IsCurrent(path)
}

// Unload drops the loaded value of path.
func (a *App) Unload(path string) error {
	s, err := a.current()
	if err != nil {
		return err
	}
	return s.coord.Unload(path)
}

// UnloadAll drops every loaded value.
func (a *App) UnloadAll() error {
	s, err := a.current()
	if err != nil {
		return err
	}
	return s.coord.UnloadAll()
}

// GetRequiredUpdates lists the records whose installed copy is stale. A
// non-empty group restricts the result to records of that group.
func (a *App) GetRequiredUpdates(ctx context.Context, group string) ([]domain.AssetRecord, error) {
	s, err := a.current()
	if err != nil {
		return nil, err
	}
	return s.coord.RequiredUpdates(ctx, group)
}

// CancelAll stops every outstanding update and load. Waiting callers return
// context.Canceled; later requests start fresh.
func (a *App) CancelAll() {
	a.mu.RLock()
	s := a.session
	a.mu.RUnlock()
	if s != nil {
		s.coord.CancelAll()
	}
}

// DeleteCache unloads records, along with every path sharing their files,
// and deletes their installed files and version entries.
func (a *App) DeleteCache(ctx context.Context, records []domain.AssetRecord) (reclaim.Result, error) {
	s, err := a.current()
	if err != nil {
		return reclaim.Result{}, err
	}

	idx, _ := a.holder.Current()
	fileNames := make([]string, 0, len(records))
	var errs []error
	for _, record := range records {
		fileNames = append(fileNames, record.FileName)
		for _, path := range sharingPaths(idx, record) {
			errs = append(errs, s.coord.Unload(path))
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error(err)
	}

	return s.reclaimer.ReclaimExplicit(ctx, fileNames)
}

// DeleteAllCache cancels in-flight fetches, unloads everything and deletes
// every installed file.
func (a *App) DeleteAllCache(ctx context.Context) (reclaim.Result, error) {
	s, err := a.current()
	if err != nil {
		return reclaim.Result{}, err
	}
	return s.reclaimer.ReclaimAll(ctx)
}

// ReclaimUnused deletes files the current catalog does not reference. Unless
// force is set, it does nothing within the reclaim cooldown.
func (a *App) ReclaimUnused(ctx context.Context, force bool) (reclaim.Result, error) {
	s, err := a.current()
	if err != nil {
		return reclaim.Result{}, err
	}
	return s.reclaimer.ReclaimUnused(ctx, force)
}

// Subscribe registers for lifecycle events. The returned function unsubscribes.
func (a *App) Subscribe(buffer int) (<-chan domain.Event, func()) {
	return a.broker.Subscribe(buffer)
}

// Shutdown cancels outstanding work, drops loaded values and closes event
// subscriptions. The app cannot be used afterwards.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	s := a.session
	a.session = nil
	a.mu.Unlock()

	var err error
	if s != nil {
		err = a.closeSession(s)
	}
	a.broker.Close()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(err, ctxErr)
	}
	return err
}

func (a *App) closeSession(s *session) error {
	s.coord.CancelAll()
	err := s.coord.UnloadAll()
	s.coord.Close()
	return err
}

func (a *App) current() (*session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil, domain.ErrNotInitialized
	}
	return a.session, nil
}

// sharingPaths returns every path whose content lives in record's file.
func sharingPaths(idx *domain.Index, record domain.AssetRecord) []string {
	if idx == nil {
		return []string{record.Path}
	}
	records := idx.RecordsForKey(record.Key())
	if len(records) == 0 {
		return []string{record.Path}
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Path)
	}
	return out
}
