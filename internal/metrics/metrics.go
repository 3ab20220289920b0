package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the service.
type Registry struct {
	registry *prometheus.Registry

	// Provider call metrics
	ProviderRequests *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec

	// Analysis run metrics
	AnalysisDuration prometheus.Histogram
	AnalysisRuns     *prometheus.CounterVec
	TasksExecuted    *prometheus.CounterVec
	ActiveRuns       prometheus.Gauge
}

// NewRegistry creates and registers all service metrics on a dedicated
// registry so tests can build as many instances as they need.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aletheia_provider_requests_total",
				Help: "Total outbound data provider requests by provider",
			},
			[]string{"provider"},
		),

		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aletheia_provider_errors_total",
				Help: "Total failed data provider requests by provider",
			},
			[]string{"provider"},
		),

		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aletheia_analysis_duration_seconds",
				Help:    "Wall time of complete analysis runs in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
			},
		),

		AnalysisRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aletheia_analysis_runs_total",
				Help: "Total analysis runs by outcome",
			},
			[]string{"status"},
		),

		TasksExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aletheia_tasks_executed_total",
				Help: "Total pipeline tasks executed by task type",
			},
			[]string{"task_type"},
		),

		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "aletheia_active_runs",
				Help: "Number of analysis runs currently in flight",
			},
		),
	}

	r.registry.MustRegister(
		r.ProviderRequests,
		r.ProviderErrors,
		r.AnalysisDuration,
		r.AnalysisRuns,
		r.TasksExecuted,
		r.ActiveRuns,
	)
	return r
}

// ObserveRun records one finished analysis run.
func (r *Registry) ObserveRun(started time.Time, err error) {
	r.AnalysisDuration.Observe(time.Since(started).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.AnalysisRuns.WithLabelValues(status).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
