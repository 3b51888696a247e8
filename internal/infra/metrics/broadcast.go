package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		broadcastsStagedTotal,
		broadcastDeliveriesTotal,
		broadcastDurationSeconds,
	)
}

var (
	broadcastsStagedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcasts_staged_total",
			Help: "Total number of broadcast payloads staged by admins.",
		},
	)

	broadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Per-recipient broadcast delivery outcomes.",
		},
		[]string{"outcome"}, // sent | failed
	)

	broadcastDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_duration_seconds",
			Help:    "Wall-clock duration of full broadcast executions.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)
)

func IncBroadcastStaged() { broadcastsStagedTotal.Inc() }

func IncDelivery(outcome string) {
	broadcastDeliveriesTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveBroadcastDuration(d time.Duration) {
	broadcastDurationSeconds.Observe(d.Seconds())
}
