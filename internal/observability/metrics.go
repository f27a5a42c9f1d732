package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// favoriteToggles counts favorite toggles by resulting state.
	favoriteToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chai_favorite_toggles_total",
			Help: "Total number of favorite toggles by resulting state.",
		},
		[]string{"state"},
	)

	// reviewsSubmitted counts accepted reviews by star rating.
	reviewsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chai_reviews_submitted_total",
			Help: "Total number of reviews accepted, by rating.",
		},
		[]string{"rating"},
	)
)

func init() {
	prometheus.MustRegister(favoriteToggles, reviewsSubmitted)
}

// RecordFavoriteToggle counts one toggle ending in the given state.
func RecordFavoriteToggle(favorited bool) {
	state := "removed"
	if favorited {
		state = "added"
	}
	favoriteToggles.WithLabelValues(state).Inc()
}

// RecordReview counts one accepted review.
func RecordReview(rating int) {
	reviewsSubmitted.WithLabelValues(ratingLabel(rating)).Inc()
}

func ratingLabel(r int) string {
	if r < 1 || r > 9 {
		return "other"
	}
	return string(rune('0' + r))
}
