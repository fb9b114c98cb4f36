package ports

import "time"

//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks

// Metrics records operational counters for the cache.
type Metrics interface {
	// TransferFinished records one transfer attempt and its outcome.
	TransferFinished(outcome string, bytes int64, elapsed time.Duration)
	// RequestShared records a caller that attached to an in-flight operation.
	RequestShared(kind string)
	// LoadFinished records one load attempt and its outcome.
	LoadFinished(outcome string)
	// FilesReclaimed records the result of one reclaim sweep.
	FilesReclaimed(deleted, failed int)
}
