package ports

import (
	"context"

	"go.trai.ch/parcel/internal/core/domain"
)

// Decoder turns an installed file into a typed in-memory value.
//
//go:generate mockgen -source=decoder.go -destination=mocks/mock_decoder.go -package=mocks
type Decoder[T any] interface {
	// Decode reads record's content from the file at path.
	Decode(ctx context.Context, path string, record domain.AssetRecord) (T, error)
}
