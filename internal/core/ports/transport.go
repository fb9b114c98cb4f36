package ports

import (
	"context"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
)

//go:generate mockgen -source=transport.go -destination=mocks/mock_transport.go -package=mocks

// ProgressFunc receives the completed fraction of a transfer, from 0 to 1.
type ProgressFunc func(fraction float64)

// Transport moves remote files into a local directory.
type Transport interface {
	// Fetch downloads req.FileName into destDir and returns the number of bytes written.
	// The destination file must only appear once it is complete.
	Fetch(ctx context.Context, req domain.FetchRequest, destDir string, progress ProgressFunc) (int64, error)
}

// TransportFactory builds a Transport for a remote URL.
type TransportFactory interface {
	// New returns a transport for rawURL. timeout bounds each transfer; zero disables it.
	New(rawURL string, timeout time.Duration) (Transport, error)
}
