// Package metrics records how mock glucose store queries were resolved.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder observes resolved store operations.
type Recorder interface {
	Observe(ctx context.Context, scenario, backing, operation string, success bool, duration time.Duration)
}

// Nop discards observations.
type Nop struct{}

// Observe implements Recorder.
func (Nop) Observe(context.Context, string, string, string, bool, time.Duration) {}

// Prometheus is a Recorder backed by its own prometheus registry.
type Prometheus struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	durations   *prometheus.HistogramVec
}

// NewPrometheus creates a recorder with a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glucosim",
			Name:      "resolutions_total",
			Help:      "Mock glucose store operations by scenario, backing and outcome.",
		}, []string{"scenario", "backing", "operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "glucosim",
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving mock glucose store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
	}
	p.registry.MustRegister(p.resolutions, p.durations)
	return p
}

// Observe implements Recorder.
func (p *Prometheus) Observe(_ context.Context, scenario, backing, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	p.resolutions.WithLabelValues(scenario, backing, operation, status).Inc()
	p.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Resolutions exposes the resolution counter for inspection.
func (p *Prometheus) Resolutions() *prometheus.CounterVec {
	return p.resolutions
}

// Handler serves the registry in the prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
