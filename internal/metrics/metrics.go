package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	DispatchTotal   *prometheus.CounterVec
	DispatchLatency *prometheus.HistogramVec
	SIMQueries      *prometheus.CounterVec
	HandlerRequests *prometheus.CounterVec
	Errors          *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ussd_dispatch_total",
				Help:      "Total USSD dispatches by mode and outcome.",
			}, []string{"mode", "outcome"}),
			DispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ussd_dispatch_duration_seconds",
				Help:      "Latency distribution for USSD dispatches.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"mode"}),
			SIMQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sim_status_queries_total",
				Help:      "Total SIM slot status queries by slot and outcome.",
			}, []string{"slot", "outcome"}),
			HandlerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_requests_total",
				Help:      "Total function handler requests by handler and HTTP status.",
			}, []string{"handler", "status"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.DispatchTotal,
			metricsInstance.DispatchLatency,
			metricsInstance.SIMQueries,
			metricsInstance.HandlerRequests,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
