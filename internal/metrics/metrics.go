// Package metrics expone las métricas Prometheus del servicio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "husbandry"

// HTTP
var (
	// HTTPRequestsTotal cuenta requests por método, ruta y status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration mide la latencia por método y ruta.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight mide los requests en curso.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)
)

// Ciclo de vida de alertas
var (
	// AlertsCreatedTotal cuenta alertas creadas por los generadores, por tipo.
	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "created_total",
			Help:      "Alerts created by the rule generators",
		},
		[]string{"kind"},
	)

	// AlertsCompletedTotal cuenta alertas completadas, por tipo.
	AlertsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "completed_total",
			Help:      "Alerts completed",
		},
		[]string{"kind"},
	)

	// AlertsDeclinedTotal cuenta alertas rechazadas, por tipo.
	AlertsDeclinedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "declined_total",
			Help:      "Alerts declined",
		},
		[]string{"kind"},
	)

	// AlertsExpiredTotal cuenta alertas expiradas por el barrido.
	AlertsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "expired_total",
			Help:      "Alerts expired by the reconciliation sweep",
		},
	)

	// ReconcileRunsTotal cuenta ejecuciones del pase de reconciliación.
	ReconcileRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "reconcile_runs_total",
			Help:      "Reconciliation pass executions",
		},
	)
)
