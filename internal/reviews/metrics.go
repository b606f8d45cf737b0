package reviews

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reviewsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reviews_submitted_total",
		Help: "Total number of reviews submitted",
	},
	[]string{"rating"},
)

func RecordReviewSubmitted(rating int) {
	reviewsSubmittedTotal.WithLabelValues(strconv.Itoa(rating)).Inc()
}
