package meetups

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	meetupsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meetups_started_total",
			Help: "Total number of meetups that reached IN_PROGRESS",
		},
	)

	meetupsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meetups_completed_total",
			Help: "Total number of meetups completed by both sides",
		},
	)

	meetupsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meetups_cancelled_total",
			Help: "Total number of meetups cancelled before starting",
		},
	)

	meetupDurationMinutes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meetups_duration_minutes",
			Help:    "Distribution of completed meetup durations",
			Buckets: prometheus.LinearBuckets(0, 30, 10),
		},
	)
)

func RecordMeetupStarted() {
	meetupsStartedTotal.Inc()
}

func RecordMeetupCompleted(durationMinutes int) {
	meetupsCompletedTotal.Inc()
	meetupDurationMinutes.Observe(float64(durationMinutes))
}

func RecordMeetupCancelled() {
	meetupsCancelledTotal.Inc()
}
