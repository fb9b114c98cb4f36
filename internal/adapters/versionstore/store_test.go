package versionstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/adapters/versionstore"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newStore(t *testing.T, dir string) (*versionstore.Store, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	return versionstore.New(dir, log), log
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, _ := newStore(t, dir)

	require.NoError(t, store.Set("ui_pack.bundle", "h1"))

	got, ok := store.Get("ui_pack.bundle")
	require.True(t, ok)
	assert.Equal(t, "h1", got)

	data, err := os.ReadFile(filepath.Join(dir, "ui_pack.bundle.version"))
	require.NoError(t, err)
	assert.Equal(t, "h1", string(data))

	// A fresh instance sees the persisted entry.
	reopened, _ := newStore(t, dir)
	got, ok = reopened.Get("ui_pack.bundle")
	require.True(t, ok)
	assert.Equal(t, "h1", got)
}

func TestStore_MissingDirectoryIsEmpty(t *testing.T) {
	store, _ := newStore(t, filepath.Join(t.TempDir(), "never-created"))

	require.NoError(t, store.Load())
	_, ok := store.Get("anything")
	assert.False(t, ok)
	assert.Empty(t, store.Entries())
}

func TestStore_CorruptEntriesAreDiscarded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.bundle.version"), nil, domain.PrivateFilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "binary.bundle.version"), []byte{0xff, 0xfe, 0xfd}, domain.PrivateFilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.bundle.version"), []byte("h2"), domain.PrivateFilePerm))

	store, log := newStore(t, dir)
	log.EXPECT().Warn(gomock.Any()).Times(2)

	require.NoError(t, store.Load())
	assert.Equal(t, map[string]string{"good.bundle": "h2"}, store.Entries())

	assert.NoFileExists(t, filepath.Join(dir, "empty.bundle.version"))
	assert.NoFileExists(t, filepath.Join(dir, "binary.bundle.version"))
}

func TestStore_Remove(t *testing.T) {
	dir := t.TempDir()
	store, _ := newStore(t, dir)

	require.NoError(t, store.Set("old_pack.bundle", "h0"))
	require.NoError(t, store.Remove("old_pack.bundle"))
	require.NoError(t, store.Remove("never-set.bundle"))

	_, ok := store.Get("old_pack.bundle")
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(dir, "old_pack.bundle.version"))
}

func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()
	store, _ := newStore(t, dir)

	require.NoError(t, store.Set("a.bundle", "1"))
	require.NoError(t, store.Set("b.bundle", "2"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bundle"), []byte("data"), domain.PrivateFilePerm))

	require.NoError(t, store.Clear())

	assert.Empty(t, store.Entries())
	assert.NoFileExists(t, filepath.Join(dir, "a.bundle.version"))
	assert.NoFileExists(t, filepath.Join(dir, "b.bundle.version"))
	assert.FileExists(t, filepath.Join(dir, "a.bundle"))
}

func TestStore_SetLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := newStore(t, dir)

	require.NoError(t, store.Set("a.bundle", "1"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.bundle.version", entries[0].Name())
}

func TestStore_SetFailureIsStorageFailure(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), domain.PrivateFilePerm))

	// The install directory path runs through a regular file, so it cannot be created.
	store, log := newStore(t, filepath.Join(blocker, "cache"))
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	err := store.Set("a.bundle", "1")
	require.ErrorIs(t, err, domain.ErrStorageFailed)
}

func TestFactory_Open(t *testing.T) {
	dir := t.TempDir()
	ctrl := gomock.NewController(t)
	f := versionstore.NewFactory(mocks.NewMockLogger(ctrl))

	require.NoError(t, f.Open(dir).Set("a.bundle", "1"))
	got, ok := f.Open(dir).Get("a.bundle")
	require.True(t, ok)
	assert.Equal(t, "1", got)
}
