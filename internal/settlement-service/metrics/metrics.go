package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_requests_total",
			Help: "Total settlement attempts by result and mode",
		},
		[]string{"result", "mode"},
	)

	settlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_ms",
			Help:    "Settlement processing duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result"},
	)

	settlementPayout = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_payout_total",
			Help: "Sum of credits distributed by settlements (currency units)",
		},
	)

	wagersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wagers_placed_total",
			Help: "Total wagers accepted",
		},
	)
)

// RecordSettlement registra as métricas de negócio de uma liquidação.
// result: "success" | "fail" | "idempotent"
// mode: "proportional" | "refund" | "none"
func RecordSettlement(result, mode string, payout float64, started time.Time) {
	settlementTotal.WithLabelValues(result, mode).Inc()
	settlementDuration.WithLabelValues(result).Observe(float64(time.Since(started).Milliseconds()))
	if payout > 0 {
		settlementPayout.Add(payout)
	}
}

// RecordWagerPlaced conta uma aposta aceita.
func RecordWagerPlaced() {
	wagersPlaced.Inc()
}
