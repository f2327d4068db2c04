// Package metrics records secret resolutions, I/O requests and stream
// connects as Prometheus metrics. The CLI has no scrape endpoint; metrics
// are written in the node-exporter textfile format on exit.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds every collector on its own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	resolutions        *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	ioRequests         *prometheus.CounterVec
	streamConnects     *prometheus.CounterVec
}

// New creates a Metrics with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secstream_secret_resolutions_total",
				Help: "Total number of secret resolutions by variant and result",
			},
			[]string{"kind", "result"},
		),
		resolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "secstream_secret_resolution_duration_seconds",
				Help:    "Duration of secret resolutions in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"kind"},
		),
		ioRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secstream_io_requests_total",
				Help: "Total number of I/O requests executed by the runtime",
			},
			[]string{"request", "result"},
		),
		streamConnects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secstream_stream_connects_total",
				Help: "Total number of stream connection attempts by provider and result",
			},
			[]string{"provider", "result"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordResolution records one finished secret resolution.
func (m *Metrics) RecordResolution(kind string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(kind, result(err)).Inc()
	m.resolutionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordIORequest records one request executed by a runtime.
func (m *Metrics) RecordIORequest(request string, err error) {
	if m == nil {
		return
	}
	m.ioRequests.WithLabelValues(request, result(err)).Inc()
}

// RecordConnect records one stream connection attempt.
func (m *Metrics) RecordConnect(provider string, err error) {
	if m == nil {
		return
	}
	m.streamConnects.WithLabelValues(provider, result(err)).Inc()
}

// WriteTextfile writes every collected metric to path in the textfile
// collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
