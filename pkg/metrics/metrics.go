package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks endpoint latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// GatewayDecisions counts authorization outcomes by rejection code, with
	// "ALLOWED" for admitted requests.
	GatewayDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_decisions_total",
			Help: "Total number of gateway authorization decisions",
		},
		[]string{"outcome"},
	)

	// PredictionsServed counts scored feature vectors by subscription tier.
	PredictionsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_served_total",
			Help: "Total number of predictions served",
		},
		[]string{"tier"},
	)

	// RacesEvaluated counts races scored by the watcher.
	RacesEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "races_evaluated_total",
			Help: "Total number of races evaluated by the watcher",
		},
	)
)

// ObserveRequest records one HTTP request.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordDecision records one gateway authorization outcome.
func RecordDecision(outcome string) {
	GatewayDecisions.WithLabelValues(outcome).Inc()
}

// RecordPrediction records one served prediction.
func RecordPrediction(tier string) {
	PredictionsServed.WithLabelValues(tier).Inc()
}
