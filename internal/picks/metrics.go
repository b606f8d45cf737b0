// internal/picks/metrics.go

package picks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pickRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picks_requests_total",
			Help: "Total number of pick requests created",
		},
		[]string{"activity"},
	)

	picksCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picks_cancelled_total",
			Help: "Total number of pick requests cancelled by their owner",
		},
	)

	picksExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picks_expired_total",
			Help: "Total number of pick requests expired by the sweeper",
		},
	)

	nearbySearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "picks_nearby_search_results",
			Help:    "Distribution of result counts for nearby searches",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)
)

func RecordPickCreated(activity string) {
	pickRequestsTotal.WithLabelValues(activity).Inc()
}

func RecordPickCancelled() {
	picksCancelledTotal.Inc()
}

func RecordPicksExpired(count int64) {
	picksExpiredTotal.Add(float64(count))
}

func RecordNearbySearch(resultCount int) {
	nearbySearchResults.Observe(float64(resultCount))
}
