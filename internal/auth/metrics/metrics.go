package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the auth module. Sign-in outcomes are
// labelled so dashboards can separate credential failures from provider
// trouble.
type Metrics struct {
	SignInOutcomes   *prometheus.CounterVec
	LegacyMigrations prometheus.Counter
	Registrations    prometheus.Counter
	SignInDuration   prometheus.Histogram
}

// New creates a Metrics instance with all auth module metrics registered.
func New() *Metrics {
	return &Metrics{
		SignInOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gesher_sign_in_total",
			Help: "Sign-in attempts by outcome",
		}, []string{"outcome"}),
		LegacyMigrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gesher_legacy_migrations_total",
			Help: "Legacy credentials promoted to provider accounts",
		}),
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gesher_registrations_total",
			Help: "Completed registrations",
		}),
		SignInDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gesher_sign_in_duration_seconds",
			Help:    "Duration of sign-in attempts including legacy fallback",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveSignIn records one sign-in attempt.
func (m *Metrics) ObserveSignIn(outcome string, start time.Time) {
	m.SignInOutcomes.WithLabelValues(outcome).Inc()
	m.SignInDuration.Observe(time.Since(start).Seconds())
}
