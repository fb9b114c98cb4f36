package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/core/domain"
)

func rec(path, pkg, file, hash string) domain.AssetRecord {
	return domain.AssetRecord{
		Path:        path,
		Package:     domain.NewInternedString(pkg),
		FileName:    file,
		ContentHash: hash,
	}
}

func TestDecodeCatalog(t *testing.T) {
	data := []byte(`{
  "version": "v1",
  "hash": "c1",
  "records": [
    {"path": "ui/icon.png", "package": "ui_pack", "file": "ui_pack.bundle", "hash": "h1", "id": "guid-1", "group": "ui"},
    {"path": "intro.txt", "file": "intro.txt", "hash": "h9"}
  ],
  "dependencies": {"ui_pack": ["core_pack"]}
}`)

	c, err := domain.DecodeCatalog(data)
	require.NoError(t, err)

	assert.Equal(t, "v1", c.Version)
	assert.Equal(t, "c1", c.Hash)
	require.Len(t, c.Records, 2)
	assert.Equal(t, "ui_pack", c.Records[0].Package.String())
	assert.Equal(t, "ui", c.Records[0].Group.String())
	assert.True(t, c.Records[0].IsPackaged())
	assert.False(t, c.Records[1].IsPackaged())
	assert.Equal(t, "intro.txt", c.Records[1].Key())
	assert.Equal(t, []string{"core_pack"}, c.DependenciesOf("ui_pack"))
}

func TestDecodeCatalog_Invalid(t *testing.T) {
	_, err := domain.DecodeCatalog([]byte(`{ not json`))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCatalogDecodeFailed.Error())
}

func TestCatalog_Validate(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.AssetRecord
		wantErr error
	}{
		{
			name: "valid",
			records: []domain.AssetRecord{
				rec("a", "p", "p.bundle", "h"),
				rec("b", "p", "p.bundle", "h"),
				rec("c", "", "c.bin", "x"),
			},
		},
		{
			name: "duplicate path",
			records: []domain.AssetRecord{
				rec("a", "p", "p.bundle", "h"),
				rec("a", "q", "q.bundle", "h"),
			},
			wantErr: domain.ErrDuplicateRecord,
		},
		{
			name: "package split across files",
			records: []domain.AssetRecord{
				rec("a", "p", "p.bundle", "h"),
				rec("b", "p", "other.bundle", "h"),
			},
			wantErr: domain.ErrInconsistentPackage,
		},
		{
			name: "package with two hashes",
			records: []domain.AssetRecord{
				rec("a", "p", "p.bundle", "h1"),
				rec("b", "p", "p.bundle", "h2"),
			},
			wantErr: domain.ErrInconsistentPackage,
		},
		{
			name:    "missing file name",
			records: []domain.AssetRecord{rec("a", "p", "", "h")},
			wantErr: domain.ErrInvalidRecord,
		},
		{
			name: "package named like a single file",
			records: []domain.AssetRecord{
				rec("intro.txt", "", "intro.txt", "h1"),
				rec("ui/icon.png", "intro.txt", "ui_pack.bundle", "h2"),
			},
			wantErr: domain.ErrKeyCollision,
		},
		{
			name: "single file named like a package",
			records: []domain.AssetRecord{
				rec("ui/icon.png", "intro.txt", "ui_pack.bundle", "h2"),
				rec("intro.txt", "", "intro.txt", "h1"),
			},
			wantErr: domain.ErrKeyCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &domain.Catalog{Records: tt.records}
			err := c.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCatalog_EncodeRoundTrip(t *testing.T) {
	c := &domain.Catalog{
		Version:      "v2",
		Hash:         "c2",
		Records:      []domain.AssetRecord{rec("a", "p", "p.bundle", "h")},
		Dependencies: map[string][]string{"p": {"q"}},
	}

	data, err := c.Encode()
	require.NoError(t, err)

	got, err := domain.DecodeCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]domain.Mode{
		"":          domain.ModeNetworked,
		"networked": domain.ModeNetworked,
		"local":     domain.ModeLocal,
		"simulated": domain.ModeSimulated,
	} {
		got, err := domain.ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := domain.ParseMode("offline")
	require.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, domain.IsRetryable(domain.ErrTransferFailed))
	assert.True(t, domain.IsRetryable(domain.ErrIntegrityMismatch))
	assert.True(t, domain.IsRetryable(domain.ErrTransferTimeout))
	assert.False(t, domain.IsRetryable(domain.ErrRecordNotFound))
	assert.False(t, domain.IsRetryable(domain.ErrStorageFailed))

	assert.Equal(t, domain.EventUpdateCompleted, domain.UpdateOutcome(nil))
	assert.Equal(t, domain.EventUpdateTimeout, domain.UpdateOutcome(domain.ErrTransferTimeout))
	assert.Equal(t, domain.EventUpdateFailed, domain.UpdateOutcome(domain.ErrTransferFailed))
	assert.Equal(t, "update.cancelled", domain.UpdateOutcome(context.Canceled).String())

	assert.Equal(t, domain.EventLoadCompleted, domain.LoadOutcome(nil))
	assert.Equal(t, domain.EventLoadCancelled, domain.LoadOutcome(context.Canceled))
	assert.Equal(t, domain.EventLoadTimeout, domain.LoadOutcome(errors.Join(domain.ErrTransferTimeout, context.DeadlineExceeded)))
	assert.Equal(t, domain.EventLoadFailed, domain.LoadOutcome(domain.ErrRecordNotFound))
	assert.Equal(t, "load.cancelled", domain.EventLoadCancelled.String())
	assert.Equal(t, "load.timeout", domain.EventLoadTimeout.String())
}
