package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/adapters/decoder"
	"go.trai.ch/parcel/internal/adapters/fs"
	"go.trai.ch/parcel/internal/adapters/metrics"
	"go.trai.ch/parcel/internal/adapters/telemetry"
	"go.trai.ch/parcel/internal/adapters/transport"
	"go.trai.ch/parcel/internal/adapters/versionstore"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const token = "v1"

var remoteFiles = map[string]string{
	"ui_pack.bundle":   "ui bundle",
	"core_pack.bundle": "core bundle",
	"intro.txt":        "hello",
}

func remoteCatalog() *domain.Catalog {
	ui := domain.NewInternedString("ui_pack")
	core := domain.NewInternedString("core_pack")
	return &domain.Catalog{
		Version: token,
		Hash:    "catalog-hash-1",
		Records: []domain.AssetRecord{
			{Path: "ui/icon.png", Package: ui, FileName: "ui_pack.bundle", ContentHash: "h1", ID: "icon-guid", Group: domain.NewInternedString("ui")},
			{Path: "ui/font.ttf", Package: ui, FileName: "ui_pack.bundle", ContentHash: "h1", Group: domain.NewInternedString("ui")},
			{Path: "core/shader.bin", Package: core, FileName: "core_pack.bundle", ContentHash: "h2"},
			{Path: "intro.txt", FileName: "intro.txt", ContentHash: "h3"},
		},
		Dependencies: map[string][]string{"ui_pack": {"core_pack"}},
	}
}

// writeRemote lays out a file:// mirror holding c and its packages.
func writeRemote(t *testing.T, c *domain.Catalog) string {
	t.Helper()
	dir := t.TempDir()
	data, err := c.Encode()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.CatalogFileName(token)), data, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.CatalogHashName(token)), []byte(c.Hash+"\n"), 0o600))
	for name, content := range remoteFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	a := app.New(
		logger,
		telemetry.NewNoOpTracer(),
		metrics.NoOp{},
		fs.NewWalker(),
		fs.NewHasher(),
		versionstore.NewFactory(logger),
		transport.NewFactory(nil),
	)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

// ready returns an app initialized against a fresh install dir with the
// mirror configured and the catalog refreshed.
func ready(t *testing.T) (*app.App, string) {
	t.Helper()
	a := newApp(t)
	localDir := t.TempDir()
	require.NoError(t, a.Initialize(localDir, ""))
	require.NoError(t, a.SetRemoteSource("file://"+writeRemote(t, remoteCatalog()), token))
	require.NoError(t, a.RefreshCatalog(context.Background()))
	return a, localDir
}

func paths(records []domain.AssetRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Path
	}
	return out
}

func TestApp_NotInitialized(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	require.ErrorIs(t, a.RequestUpdate(ctx, "ui/icon.png", nil), domain.ErrNotInitialized)
	require.ErrorIs(t, a.RefreshCatalog(ctx), domain.ErrNotInitialized)
	_, err := app.Load[[]byte](ctx, a, "ui/icon.png", decoder.Bytes{})
	require.ErrorIs(t, err, domain.ErrNotInitialized)
	_, err = a.GetRecord("ui/icon.png")
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)

	a.CancelAll()
}

func TestApp_FreshInstall(t *testing.T) {
	a, localDir := ready(t)
	ctx := context.Background()

	record, err := a.GetRecord("ui/icon.png")
	require.NoError(t, err)
	assert.Equal(t, "ui_pack", record.Key())

	stale, err := a.GetRequiredUpdates(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ui/icon.png", "ui/font.ttf", "core/shader.bin", "intro.txt"}, paths(stale))

	var last float64
	require.NoError(t, a.RequestUpdate(ctx, "ui/icon.png", func(f float64) { last = f }))
	assert.InDelta(t, 1.0, last, 1e-9)

	for _, name := range []string{"ui_pack.bundle", "core_pack.bundle"} {
		_, err := os.Stat(filepath.Join(localDir, name))
		require.NoError(t, err, name)
	}

	current, err := a.IsCurrent("ui/font.ttf")
	require.NoError(t, err)
	assert.True(t, current)

	stale, err = a.GetRequiredUpdates(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"intro.txt"}, paths(stale))

	data, err := app.Load[[]byte](ctx, a, "intro.txt", decoder.Bytes{})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestApp_GetRequiredUpdatesByGroup(t *testing.T) {
	a, _ := ready(t)

	stale, err := a.GetRequiredUpdates(context.Background(), "ui")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ui/icon.png", "ui/font.ttf"}, paths(stale))
}

func TestApp_GetRecordByID(t *testing.T) {
	a, _ := ready(t)

	record, err := a.GetRecordByID("icon-guid")
	require.NoError(t, err)
	assert.Equal(t, "ui/icon.png", record.Path)

	_, err = a.GetRecordByID("missing")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)

	_, err = a.GetRecord("missing.png")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestApp_RefreshReclaimsOrphans(t *testing.T) {
	a := newApp(t)
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "old_pack.bundle"), []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(localDir, domain.SidecarName("old_pack.bundle")), []byte("h0"), 0o600))

	require.NoError(t, a.Initialize(localDir, ""))
	require.NoError(t, a.SetRemoteSource("file://"+writeRemote(t, remoteCatalog()), token))

	events, unsubscribe := a.Subscribe(8)
	defer unsubscribe()

	require.NoError(t, a.RefreshCatalog(context.Background()))

	for _, name := range []string{"old_pack.bundle", domain.SidecarName("old_pack.bundle")} {
		_, err := os.Stat(filepath.Join(localDir, name))
		assert.ErrorIs(t, err, os.ErrNotExist, name)
	}
	_, err := os.Stat(filepath.Join(localDir, domain.CatalogFileName(token)))
	require.NoError(t, err)

	kinds := map[domain.EventKind]bool{}
	for len(events) > 0 {
		ev := <-events
		kinds[ev.Kind] = true
	}
	assert.True(t, kinds[domain.EventCacheReclaimed])
	assert.True(t, kinds[domain.EventCatalogRefreshed])
}

func TestApp_RefreshWithoutToken(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Initialize(t.TempDir(), ""))

	require.ErrorIs(t, a.RefreshCatalog(context.Background()), domain.ErrCatalogUnavailable)
}

func TestApp_SetRemoteSourceUnsupportedScheme(t *testing.T) {
	a := newApp(t)
	require.ErrorIs(t, a.SetRemoteSource("ftp://example.com/x", token), domain.ErrUnsupportedScheme)
}

func TestApp_DeleteCache(t *testing.T) {
	a, localDir := ready(t)
	ctx := context.Background()

	require.NoError(t, a.RequestUpdate(ctx, "ui/icon.png", nil))
	_, err := app.Load[[]byte](ctx, a, "ui/font.ttf", decoder.Bytes{})
	require.NoError(t, err)

	record, err := a.GetRecord("ui/icon.png")
	require.NoError(t, err)

	res, err := a.DeleteCache(ctx, []domain.AssetRecord{record})
	require.NoError(t, err)
	assert.Equal(t, []string{"ui_pack.bundle"}, res.Deleted)

	_, err = os.Stat(filepath.Join(localDir, "ui_pack.bundle"))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(localDir, "core_pack.bundle"))
	require.NoError(t, err)

	current, err := a.IsCurrent("ui/font.ttf")
	require.NoError(t, err)
	assert.False(t, current)
}

func TestApp_DeleteAllCache(t *testing.T) {
	a, localDir := ready(t)
	ctx := context.Background()

	require.NoError(t, a.RequestUpdate(ctx, "ui/icon.png", nil))

	res, err := a.DeleteAllCache(ctx)
	require.NoError(t, err)
	assert.Contains(t, res.Deleted, "ui_pack.bundle")
	assert.Contains(t, res.Deleted, "core_pack.bundle")

	entries, err := os.ReadDir(localDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, domain.IsSidecar(e.Name()), e.Name())
	}

	stale, err := a.GetRequiredUpdates(ctx, "")
	require.NoError(t, err)
	assert.Len(t, stale, 4)
}

func TestApp_Configure(t *testing.T) {
	a := newApp(t)
	settings := domain.DefaultSettings()
	settings.LocalDir = t.TempDir()
	settings.RemoteURL = "file://" + writeRemote(t, remoteCatalog())
	settings.CatalogVersion = token
	settings.MaxTransfers = 2
	settings.ReclaimCooldown = time.Minute

	require.NoError(t, a.Configure(context.Background(), settings))
	require.NoError(t, a.RefreshCatalog(context.Background()))

	got := a.Settings()
	assert.Equal(t, 2, got.MaxTransfers)
	assert.Equal(t, time.Minute, got.ReclaimCooldown)

	info, err := a.CatalogInfo()
	require.NoError(t, err)
	assert.Equal(t, app.CatalogInfo{
		Version:  token,
		Hash:     "catalog-hash-1",
		Records:  4,
		Packages: 2,
	}, info)
}

func TestApp_LocalMode(t *testing.T) {
	a := newApp(t).WithMode(domain.ModeLocal)
	ctx := context.Background()

	localDir := t.TempDir()
	sharedDir := writeRemote(t, remoteCatalog())
	require.NoError(t, a.Initialize(localDir, sharedDir))
	require.NoError(t, a.SetRemoteSource("file://"+sharedDir, token))
	require.NoError(t, a.RefreshCatalog(ctx))

	stale, err := a.GetRequiredUpdates(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, stale)

	data, err := app.Load[[]byte](ctx, a, "core/shader.bin", decoder.Bytes{})
	require.NoError(t, err)
	assert.Equal(t, "core bundle", string(data))

	_, err = os.Stat(filepath.Join(localDir, "core_pack.bundle"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApp_Shutdown(t *testing.T) {
	a, _ := ready(t)
	ctx := context.Background()

	_, err := app.Load[[]byte](ctx, a, "intro.txt", decoder.Bytes{})
	require.NoError(t, err)

	require.NoError(t, a.Shutdown(ctx))
	require.ErrorIs(t, a.RequestUpdate(ctx, "intro.txt", nil), domain.ErrNotInitialized)
	require.ErrorIs(t, a.UnloadAll(), domain.ErrNotInitialized)
}
