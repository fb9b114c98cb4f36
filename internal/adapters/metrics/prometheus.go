// Package metrics implements ports.Metrics with Prometheus collectors.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

// Namespace prefixes every metric name.
const Namespace = "parcel"

var _ ports.Metrics = (*Recorder)(nil)

// Recorder collects cache metrics into its own registry.
type Recorder struct {
	registry *prometheus.Registry

	transfersTotal    *prometheus.CounterVec
	transferBytes     prometheus.Counter
	transferDuration  prometheus.Histogram
	sharedTotal       *prometheus.CounterVec
	loadsTotal        *prometheus.CounterVec
	reclaimedTotal    prometheus.Counter
	reclaimFailsTotal prometheus.Counter
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,

		transfersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transfers_total",
			Help:      "Package transfers by outcome",
		}, []string{"outcome"}),

		transferBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transfer_bytes_total",
			Help:      "Bytes written to the install directory by transfers",
		}),

		transferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Duration of package transfers in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		sharedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shared_requests_total",
			Help:      "Requests that attached to an operation already in flight",
		}, []string{"kind"}),

		loadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "loads_total",
			Help:      "Asset loads by outcome",
		}, []string{"outcome"}),

		reclaimedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reclaimed_files_total",
			Help:      "Files deleted from the install directory",
		}),

		reclaimFailsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reclaim_failures_total",
			Help:      "Files that could not be deleted",
		}),
	}
}

// TransferFinished records one transfer attempt.
func (r *Recorder) TransferFinished(outcome string, bytes int64, elapsed time.Duration) {
	r.transfersTotal.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		r.transferBytes.Add(float64(bytes))
	}
	r.transferDuration.Observe(elapsed.Seconds())
}

// RequestShared records a caller that joined an in-flight operation.
func (r *Recorder) RequestShared(kind string) {
	r.sharedTotal.WithLabelValues(kind).Inc()
}

// LoadFinished records one load attempt.
func (r *Recorder) LoadFinished(outcome string) {
	r.loadsTotal.WithLabelValues(outcome).Inc()
}

// FilesReclaimed records the result of a reclaim sweep.
func (r *Recorder) FilesReclaimed(deleted, failed int) {
	r.reclaimedTotal.Add(float64(deleted))
	r.reclaimFailsTotal.Add(float64(failed))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteText writes every metric in the Prometheus text exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return zerr.Wrap(err, "failed to gather metrics")
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return zerr.Wrap(err, "failed to write metrics")
		}
	}
	return nil
}
