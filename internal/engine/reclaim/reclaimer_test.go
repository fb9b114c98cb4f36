package reclaim_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/adapters/fs"
	"go.trai.ch/parcel/internal/adapters/metrics"
	"go.trai.ch/parcel/internal/adapters/paths"
	"go.trai.ch/parcel/internal/adapters/telemetry"
	"go.trai.ch/parcel/internal/adapters/versionstore"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/parcel/internal/core/ports/mocks"
	"go.trai.ch/parcel/internal/engine/catalog"
	"go.trai.ch/parcel/internal/engine/coordinator"
	"go.trai.ch/parcel/internal/engine/events"
	"go.trai.ch/parcel/internal/engine/reclaim"
	"go.uber.org/mock/gomock"
)

func testCatalog() *domain.Catalog {
	ui := domain.NewInternedString("ui_pack")
	return &domain.Catalog{
		Version: "v2",
		Hash:    "cat-2",
		Records: []domain.AssetRecord{
			{Path: "ui/icon.png", Package: ui, FileName: "ui_pack.bundle", ContentHash: "h1"},
			{Path: "ui/font.ttf", Package: ui, FileName: "ui_pack.bundle", ContentHash: "h1"},
			{Path: "intro.txt", FileName: "intro.txt", ContentHash: "h3"},
		},
	}
}

type countingInvalidator struct{ cancels, calls int }

func (c *countingInvalidator) CancelAndWait(context.Context) error {
	c.cancels++
	return nil
}

func (c *countingInvalidator) UnloadAll() error {
	c.calls++
	return nil
}

type fixture struct {
	reclaimer   *reclaim.Reclaimer
	store       *versionstore.Store
	holder      *catalog.Holder
	logger      *mocks.MockLogger
	broker      *events.Broker
	invalidator *countingInvalidator
	dir         string
}

func newFixture(t *testing.T, cooldown time.Duration) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	dir := t.TempDir()

	logger := mocks.NewMockLogger(ctrl)
	store := versionstore.New(dir, logger)

	holder := catalog.NewHolder()
	idx, err := domain.BuildIndex(context.Background(), testCatalog())
	require.NoError(t, err)
	holder.Set(idx)

	broker := events.NewBroker()
	t.Cleanup(broker.Close)

	invalidator := &countingInvalidator{}
	r := reclaim.New(reclaim.Deps{
		Index:       holder,
		Store:       store,
		FS:          fs.NewWalker(),
		Logger:      logger,
		Tracer:      telemetry.NewNoOpTracer(),
		Metrics:     metrics.NoOp{},
		Publisher:   broker,
		Invalidator: invalidator,
	}, dir, cooldown)

	return &fixture{
		reclaimer:   r,
		store:       store,
		holder:      holder,
		logger:      logger,
		broker:      broker,
		invalidator: invalidator,
		dir:         dir,
	}
}

// install writes name into the install directory and records hash for it.
func (f *fixture) install(t *testing.T, name, hash string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), []byte(name), 0o600))
	if hash != "" {
		require.NoError(t, f.store.Set(name, hash))
	}
}

func (f *fixture) exists(name string) bool {
	_, err := os.Stat(filepath.Join(f.dir, name))
	return err == nil
}

func TestReclaimUnused_DeletesUnreferencedFileAndSidecar(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.install(t, "ui_pack.bundle", "h1")
	f.install(t, "intro.txt", "h3")
	f.install(t, "old_pack.bundle", "h0")
	f.install(t, "catalog_2.json", "")
	f.reclaimer.SetCatalogFile("catalog_2.json")

	f.logger.EXPECT().Info("reclaimed 1 file\n  .bundle (1): old_pack.bundle")

	res, err := f.reclaimer.ReclaimUnused(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"old_pack.bundle"}, res.Deleted)
	assert.Empty(t, res.Failed)
	assert.False(t, res.Skipped)

	assert.False(t, f.exists("old_pack.bundle"))
	assert.False(t, f.exists(domain.SidecarName("old_pack.bundle")))
	_, ok := f.store.Get("old_pack.bundle")
	assert.False(t, ok)

	for _, kept := range []string{"ui_pack.bundle", "intro.txt", "catalog_2.json", domain.SidecarName("ui_pack.bundle")} {
		assert.True(t, f.exists(kept), kept)
	}
	hash, ok := f.store.Get("ui_pack.bundle")
	assert.True(t, ok)
	assert.Equal(t, "h1", hash)
}

func TestReclaimUnused_NeverDeletesReferencedFiles(t *testing.T) {
	f := newFixture(t, 0)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	f.install(t, "ui_pack.bundle", "h1")
	f.install(t, "intro.txt", "h3")
	for _, name := range []string{"a.bundle", "b.bundle", "c.dat", "README"} {
		f.install(t, name, "x")
	}

	res, err := f.reclaimer.ReclaimUnused(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"README", "a.bundle", "b.bundle", "c.dat"}, res.Deleted)

	idx, err := f.holder.Current()
	require.NoError(t, err)
	for name := range idx.FileNames() {
		assert.True(t, f.exists(name), name)
	}
}

func TestReclaimUnused_Cooldown(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.reclaimer.SetClock(func() time.Time { return now })

	f.install(t, "first.bundle", "x")
	res, err := f.reclaimer.ReclaimUnused(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"first.bundle"}, res.Deleted)
	assert.True(t, f.exists(domain.StateFileName))

	f.install(t, "second.bundle", "x")
	now = now.Add(time.Minute)
	res, err = f.reclaimer.ReclaimUnused(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.True(t, f.exists("second.bundle"))

	res, err = f.reclaimer.ReclaimUnused(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"second.bundle"}, res.Deleted)

	f.install(t, "third.bundle", "x")
	now = now.Add(2 * time.Hour)
	res, err = f.reclaimer.ReclaimUnused(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, []string{"third.bundle"}, res.Deleted)
}

func TestReclaimUnused_PartialDownloads(t *testing.T) {
	f := newFixture(t, 0)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	stale := ".ui_pack.bundle-1" + domain.PartialSuffix
	fresh := ".ui_pack.bundle-2" + domain.PartialSuffix
	f.install(t, stale, "")
	f.install(t, fresh, "")

	old := time.Now().Add(-2 * domain.PartialMaxAge)
	require.NoError(t, os.Chtimes(filepath.Join(f.dir, stale), old, old))

	res, err := f.reclaimer.ReclaimUnused(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{stale}, res.Deleted)
	assert.True(t, f.exists(fresh))
}

func TestReclaimUnused_RemovesOrphanVersionEntries(t *testing.T) {
	f := newFixture(t, 0)
	f.install(t, "ui_pack.bundle", "h1")
	require.NoError(t, f.store.Set("vanished.bundle", "h9"))

	res, err := f.reclaimer.ReclaimUnused(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, res.Deleted)

	_, ok := f.store.Get("vanished.bundle")
	assert.False(t, ok)
	assert.False(t, f.exists(domain.SidecarName("vanished.bundle")))
	_, ok = f.store.Get("ui_pack.bundle")
	assert.True(t, ok)
}

func TestReclaimUnused_RequiresCatalog(t *testing.T) {
	f := newFixture(t, 0)
	f.holder.Clear()
	f.install(t, "ui_pack.bundle", "h1")

	_, err := f.reclaimer.ReclaimUnused(context.Background(), true)
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.True(t, f.exists("ui_pack.bundle"))
}

func TestReclaimUnused_Cancelled(t *testing.T) {
	f := newFixture(t, 0)
	f.install(t, "old.bundle", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.reclaimer.ReclaimUnused(ctx, true)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, f.exists("old.bundle"))
}

func TestReclaimUnused_PublishesEvent(t *testing.T) {
	f := newFixture(t, 0)
	f.logger.EXPECT().Info(gomock.Any())
	ch, unsub := f.broker.Subscribe(4)
	defer unsub()

	f.install(t, "a.bundle", "x")
	f.install(t, "b.bundle", "x")

	_, err := f.reclaimer.ReclaimUnused(context.Background(), true)
	require.NoError(t, err)

	ev := <-ch
	assert.Equal(t, domain.EventCacheReclaimed, ev.Kind)
	assert.Equal(t, 2, ev.Count)
}

func TestReclaimExplicit(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Error(gomock.Any())

	f.install(t, "ui_pack.bundle", "h1")
	f.install(t, "intro.txt", "h3")

	res, err := f.reclaimer.ReclaimExplicit(context.Background(), []string{"ui_pack.bundle", "ui_pack.bundle", "../escape"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ui_pack.bundle"}, res.Deleted)
	assert.Equal(t, []string{"../escape"}, res.Failed)
	assert.False(t, f.exists("ui_pack.bundle"))
	assert.True(t, f.exists("intro.txt"))
	_, ok := f.store.Get("ui_pack.bundle")
	assert.False(t, ok)
}

func TestReclaimExplicit_MissingFileIsNotAFailure(t *testing.T) {
	f := newFixture(t, 0)
	f.logger.EXPECT().Info(gomock.Any())
	require.NoError(t, f.store.Set("ghost.bundle", "h"))

	res, err := f.reclaimer.ReclaimExplicit(context.Background(), []string{"ghost.bundle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost.bundle"}, res.Deleted)
	_, ok := f.store.Get("ghost.bundle")
	assert.False(t, ok)
}

func TestReclaimAll(t *testing.T) {
	f := newFixture(t, 0)
	f.logger.EXPECT().Info(gomock.Any())

	f.install(t, "ui_pack.bundle", "h1")
	f.install(t, "intro.txt", "h3")
	f.install(t, "old.bundle", "h0")

	res, err := f.reclaimer.ReclaimAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.invalidator.cancels)
	assert.Equal(t, 1, f.invalidator.calls)
	assert.Equal(t, []string{"intro.txt", "old.bundle", "ui_pack.bundle"}, res.Deleted)
	assert.Empty(t, f.store.Entries())

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, domain.IsSidecar(e.Name()), e.Name())
	}
}

func TestReclaimAll_StopsInFlightFetch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := t.TempDir()
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Info(gomock.Any()).AnyTimes()
		store := versionstore.New(dir, logger)

		holder := catalog.NewHolder()
		idx, err := domain.BuildIndex(context.Background(), testCatalog())
		require.NoError(t, err)
		holder.Set(idx)

		coord := coordinator.New(coordinator.Deps{
			Index:   holder,
			Store:   store,
			FS:      fs.NewWalker(),
			Hasher:  fs.NewHasher(),
			Paths:   paths.New(dir, "", domain.ModeNetworked),
			Logger:  logger,
			Tracer:  telemetry.NewNoOpTracer(),
			Metrics: metrics.NoOp{},
		}, domain.ModeNetworked, 4)
		defer coord.Close()

		// The transfer only notices cancellation after its file is in place.
		transport := mocks.NewMockTransport(ctrl)
		transport.EXPECT().Fetch(gomock.Any(), gomock.Any(), dir, gomock.Any()).
			DoAndReturn(func(ctx context.Context, req domain.FetchRequest, destDir string, _ ports.ProgressFunc) (int64, error) {
				<-ctx.Done()
				assert.NoError(t, os.WriteFile(filepath.Join(destDir, req.FileName), []byte("late"), 0o600))
				return 4, ctx.Err()
			})
		coord.SetTransport(transport)

		r := reclaim.New(reclaim.Deps{
			Index:       holder,
			Store:       store,
			FS:          fs.NewWalker(),
			Logger:      logger,
			Tracer:      telemetry.NewNoOpTracer(),
			Metrics:     metrics.NoOp{},
			Invalidator: coord,
		}, dir, 0)

		updateErr := make(chan error, 1)
		go func() { updateErr <- coord.RequestUpdate(context.Background(), "intro.txt", nil) }()
		synctest.Wait()

		res, err := r.ReclaimAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"intro.txt"}, res.Deleted)
		require.ErrorIs(t, <-updateErr, context.Canceled)

		assert.Empty(t, store.Entries())
		assert.NoFileExists(t, filepath.Join(dir, "intro.txt"))
	})
}

func TestReclaimUnused_GoesThroughFileSystem(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := t.TempDir()
	logger := mocks.NewMockLogger(ctrl)
	store := versionstore.New(dir, logger)
	files := mocks.NewMockFileSystem(ctrl)

	holder := catalog.NewHolder()
	idx, err := domain.BuildIndex(context.Background(), testCatalog())
	require.NoError(t, err)
	holder.Set(idx)

	r := reclaim.New(reclaim.Deps{
		Index:   holder,
		Store:   store,
		FS:      files,
		Logger:  logger,
		Tracer:  telemetry.NewNoOpTracer(),
		Metrics: metrics.NoOp{},
	}, dir, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	expired := ".old.bundle-1" + domain.PartialSuffix
	recent := ".old.bundle-2" + domain.PartialSuffix
	files.EXPECT().ListFiles(dir, gomock.Any()).
		Return(slices.Values([]string{"intro.txt", "old.bundle", "locked.bundle", expired, recent}))
	files.EXPECT().ModTime(dir, expired).Return(now.Add(-2*domain.PartialMaxAge), nil)
	files.EXPECT().ModTime(dir, recent).Return(now.Add(-time.Minute), nil)
	files.EXPECT().Remove(dir, "old.bundle").Return(nil)
	files.EXPECT().Remove(dir, expired).Return(nil)
	files.EXPECT().Remove(dir, "locked.bundle").Return(errors.New("permission denied"))

	logger.EXPECT().Error(gomock.Any())
	logger.EXPECT().Info(gomock.Any())

	res, err := r.ReclaimUnused(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{expired, "old.bundle"}, res.Deleted)
	assert.Equal(t, []string{"locked.bundle"}, res.Failed)
}

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name       string
		deleted    []string
		goldenName string
	}{
		{
			name:       "mixed extensions",
			deleted:    []string{"b.bundle", "catalog_1.json", "LICENSE", "a.bundle"},
			goldenName: "summary_mixed",
		},
		{
			name:       "single file",
			deleted:    []string{"old_pack.bundle"},
			goldenName: "summary_single",
		},
		{
			name:       "nothing",
			goldenName: "summary_empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := goldie.New(t)
			g.Assert(t, tt.goldenName, []byte(reclaim.FormatSummary(tt.deleted)))
		})
	}
}
