package matches

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchesProposedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_proposed_total",
			Help: "Total number of pick proposals created",
		},
	)

	matchesResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_resolved_total",
			Help: "Total number of matches accepted or declined",
		},
		[]string{"outcome"},
	)
)

func RecordMatchProposed() {
	matchesProposedTotal.Inc()
}

func RecordMatchResolved(outcome string) {
	matchesResolvedTotal.WithLabelValues(outcome).Inc()
}
