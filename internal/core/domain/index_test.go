package domain_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/core/domain"
)

func TestBuildIndex_NilCatalog(t *testing.T) {
	_, err := domain.BuildIndex(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestBuildIndex_Lookups(t *testing.T) {
	single := rec("intro.txt", "", "intro.txt", "h9")
	icon := rec("ui/icon.png", "ui_pack", "ui_pack.bundle", "h1")
	icon.ID = "guid-icon"
	font := rec("ui/font.ttf", "ui_pack", "ui_pack.bundle", "h1")

	c := &domain.Catalog{
		Records:      []domain.AssetRecord{single, icon, font},
		Dependencies: map[string][]string{"ui_pack": {"core_pack"}},
	}

	idx, err := domain.BuildIndex(context.Background(), c)
	require.NoError(t, err)

	got, ok := idx.ByPath("ui/icon.png")
	require.True(t, ok)
	assert.Equal(t, icon, got)

	got, ok = idx.ByID("guid-icon")
	require.True(t, ok)
	assert.Equal(t, "ui/icon.png", got.Path)

	_, ok = idx.ByPath("missing")
	assert.False(t, ok)
	_, ok = idx.ByID("")
	assert.False(t, ok)

	assert.Len(t, idx.RecordsForKey("ui_pack"), 2)
	assert.Equal(t, []domain.AssetRecord{single}, idx.RecordsForKey("intro.txt"))
	assert.Empty(t, idx.RecordsForKey("core_pack"))

	assert.Equal(t, []string{"ui_pack"}, idx.Packages())
	assert.Equal(t, map[string]struct{}{"intro.txt": {}, "ui_pack.bundle": {}}, idx.FileNames())

	assert.Equal(t, []string{"ui_pack", "core_pack"}, idx.Closure(icon))
	assert.Equal(t, []string{"intro.txt"}, idx.Closure(single))
}

func TestBuildIndex_ManyBatches(t *testing.T) {
	const n = domain.IndexBatchSize*3 + 7
	records := make([]domain.AssetRecord, n)
	for i := range records {
		records[i] = rec(fmt.Sprintf("r/%d", i), fmt.Sprintf("p%d", i%10), fmt.Sprintf("p%d.bundle", i%10), "h")
	}

	idx, err := domain.BuildIndex(context.Background(), &domain.Catalog{Records: records})
	require.NoError(t, err)

	assert.Len(t, idx.Records(), n)
	assert.Len(t, idx.Packages(), 10)
	_, ok := idx.ByPath(fmt.Sprintf("r/%d", n-1))
	assert.True(t, ok)
}

func TestIndex_FileNamesWithoutPackages(t *testing.T) {
	records := make([]domain.AssetRecord, 40)
	for i := range records {
		records[i] = rec(fmt.Sprintf("f%d.txt", i), "", fmt.Sprintf("f%d.txt", i), "h")
	}

	idx, err := domain.BuildIndex(context.Background(), &domain.Catalog{Records: records})
	require.NoError(t, err)

	names := idx.FileNames()
	assert.Len(t, names, len(records))
	assert.Contains(t, names, "f39.txt")
	assert.Empty(t, idx.Packages())
}

func TestBuildIndex_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &domain.Catalog{Records: []domain.AssetRecord{rec("a", "", "a", "h")}}
	_, err := domain.BuildIndex(ctx, c)
	require.ErrorIs(t, err, context.Canceled)
}
