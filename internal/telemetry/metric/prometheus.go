package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notechain"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultFault = "fault"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Note metrics
	NoteOps *prometheus.CounterVec // op, result

	// Restart hook metrics
	SnapshotSaves    *prometheus.CounterVec   // result
	SnapshotRestores *prometheus.CounterVec   // format, result
	HookDuration     *prometheus.HistogramVec // hook

	// Request metrics
	RequestsTotal   *prometheus.CounterVec   // method, route, status
	RequestDuration *prometheus.HistogramVec // method, route
	RateLimited     prometheus.Counter

	notesOnce sync.Once
}

// NewRegistry creates a registry with all NoteChain metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		NoteOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notes",
			Name:      "operations_total",
			Help:      "Note operations by kind and result",
		}, []string{"op", "result"}),

		SnapshotSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "saves_total",
			Help:      "Pre-restart snapshot saves by result",
		}, []string{"result"}),

		SnapshotRestores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "restores_total",
			Help:      "Post-restart snapshot restores by adopted format and result",
		}, []string{"format", "result"}),

		HookDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "hook_duration_seconds",
			Help:      "Duration of the restart hooks",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"hook"}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.NoteOps,
		r.SnapshotSaves,
		r.SnapshotRestores,
		r.HookDuration,
		r.RequestsTotal,
		r.RequestDuration,
		r.RateLimited,
	)
	return r
}

// Handler returns an HTTP handler exposing r.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registerer exposes the underlying registry for components that own
// their own collectors (the Badger medium).
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the underlying registry for tests and tooling.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RegisterNoteCount registers a gauge reading the live note count.
// Only the first call has an effect.
func (r *Registry) RegisterNoteCount(count func() int) {
	if r == nil {
		return
	}
	r.notesOnce.Do(func() {
		r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notes",
			Name:      "stored",
			Help:      "Number of notes in the table",
		}, func() float64 { return float64(count()) }))
	})
}

// ObserveNoteOp counts one note operation.
func (r *Registry) ObserveNoteOp(op string, err error) {
	if r == nil {
		return
	}
	r.NoteOps.WithLabelValues(op, resultOf(err)).Inc()
}

// ObserveSave records one pre-restart hook run.
func (r *Registry) ObserveSave(result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.SnapshotSaves.WithLabelValues(result).Inc()
	r.HookDuration.WithLabelValues("pre_restart").Observe(elapsed.Seconds())
}

// ObserveRestore records one post-restart hook run.
func (r *Registry) ObserveRestore(format, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.SnapshotRestores.WithLabelValues(format, result).Inc()
	r.HookDuration.WithLabelValues("post_restart").Observe(elapsed.Seconds())
}

// ObserveRequest records one HTTP request.
func (r *Registry) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, status).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRateLimited counts one rejected request.
func (r *Registry) ObserveRateLimited() {
	if r == nil {
		return
	}
	r.RateLimited.Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
