// Package metrics exposes Prometheus instrumentation for the analysis and
// visualization pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Recorder owns a private registry so tests can build as many as they need.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	rendersTotal     *prometheus.CounterVec
	renderDuration   prometheus.Histogram
	cacheHitsTotal   prometheus.Counter
	scheduledSkipped prometheus.Counter
}

// NewRecorder registers the pipeline metrics plus the Go runtime collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowcast_analyses_total",
			Help: "Shadow analyses run, by outcome.",
		}, []string{"status"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shadowcast_analysis_duration_seconds",
			Help:    "Wall time of a full analysis including the store insert.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		rendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowcast_renders_total",
			Help: "Raster visualizations served, by outcome.",
		}, []string{"status"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shadowcast_render_duration_seconds",
			Help:    "Wall time of a visualization request.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shadowcast_render_cache_hits_total",
			Help: "Visualizations answered from the image cache.",
		}),
		scheduledSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shadowcast_scheduled_runs_skipped_total",
			Help: "Scheduled analyses skipped because the sun was down.",
		}),
	}
	r.registry.MustRegister(
		r.analysesTotal,
		r.analysisDuration,
		r.rendersTotal,
		r.renderDuration,
		r.cacheHitsTotal,
		r.scheduledSkipped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry backing the /metrics endpoint.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// ObserveAnalysis records one analysis run.
func (r *Recorder) ObserveAnalysis(err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.analysesTotal.WithLabelValues(status(err)).Inc()
	r.analysisDuration.Observe(elapsed.Seconds())
}

// ObserveRender records one visualization request.
func (r *Recorder) ObserveRender(err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.rendersTotal.WithLabelValues(status(err)).Inc()
	r.renderDuration.Observe(elapsed.Seconds())
}

// CacheHit counts a render served from cache.
func (r *Recorder) CacheHit() {
	if r == nil {
		return
	}
	r.cacheHitsTotal.Inc()
}

// ScheduledSkip counts a scheduled run skipped outside daylight.
func (r *Recorder) ScheduledSkip() {
	if r == nil {
		return
	}
	r.scheduledSkipped.Inc()
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
