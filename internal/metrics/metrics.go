package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "karaoke"

var (
	stageBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800}
	httpBuckets  = []float64{5, 25, 100, 300, 1000, 5000}
)

// Metrics owns the daemon's collectors and registry.
type Metrics struct {
	registry *prometheus.Registry

	stagesStarted *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	jobsFinished  *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New builds and registers every collector, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stagesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_started_total",
			Help:      "Number of pipeline stages started, by stage.",
		}, []string{"stage"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in a pipeline stage, by stage and outcome.",
			Buckets:   stageBuckets,
		}, []string{"stage", "outcome"}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Number of jobs that reached a terminal status.",
		}, []string{"status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of a full pipeline run, by terminal status.",
			Buckets:   stageBuckets,
		}, []string{"status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests partitioned by status code, method and route.",
		}, []string{"code", "method", "path"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_milliseconds",
			Help:      "Time spent on the request partitioned by status code, method and route.",
			Buckets:   httpBuckets,
		}, []string{"code", "method", "path"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.stagesStarted,
		m.stageDuration,
		m.jobsFinished,
		m.jobDuration,
		m.requests,
		m.latency,
	)
	return m
}

// Registry exposes the registry for extra collectors and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StageStarted implements pipeline.Observer.
func (m *Metrics) StageStarted(stage string) {
	m.stagesStarted.WithLabelValues(stage).Inc()
}

// StageFinished implements pipeline.Observer.
func (m *Metrics) StageFinished(stage, outcome string, elapsed time.Duration) {
	m.stageDuration.WithLabelValues(stage, outcome).Observe(elapsed.Seconds())
}

// JobFinished implements pipeline.Observer.
func (m *Metrics) JobFinished(status string, elapsed time.Duration) {
	m.jobsFinished.WithLabelValues(status).Inc()
	m.jobDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}
