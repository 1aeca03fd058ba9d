package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsGenerated counts budget alerts created by type (warning|over-budget|custom-threshold).
	AlertsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgpagri_alerts_generated_total",
			Help: "Total number of budget alerts generated",
		},
		[]string{"type"},
	)

	// AlertEvaluations counts alert evaluation passes and their outcome (ok|error).
	AlertEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgpagri_alert_evaluations_total",
			Help: "Total number of budget alert evaluation passes",
		},
		[]string{"result"},
	)

	// UndismissedAlerts tracks alerts awaiting user dismissal.
	UndismissedAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sgpagri_undismissed_alerts",
			Help: "Number of undismissed budget alerts",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sgpagri_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
