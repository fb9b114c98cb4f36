// Package decoder provides Decoder implementations for common asset encodings.
package decoder

import (
	"context"
	"encoding/json"
	"os"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Decoder[[]byte]         = Bytes{}
	_ ports.Decoder[map[string]any] = JSON[map[string]any]{}
)

// Bytes decodes a file into its raw content.
type Bytes struct{}

// Decode reads the whole file at path.
func (Bytes) Decode(ctx context.Context, path string, record domain.AssetRecord) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // Path is resolved from the catalog and install directory
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read asset"), "path", record.Path)
	}
	return data, nil
}

// JSON decodes a file holding one JSON document into T.
type JSON[T any] struct{}

// Decode reads and unmarshals the file at path.
func (JSON[T]) Decode(ctx context.Context, path string, record domain.AssetRecord) (T, error) {
	var out T
	data, err := Bytes{}.Decode(ctx, path, record)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, zerr.With(zerr.Wrap(err, "failed to decode asset"), "path", record.Path)
	}
	return out, nil
}
