package carl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	factorLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carl_factor_cache_lookups_total",
		Help: "Factor intern lookups by result (hit or miss)",
	}, []string{"result"})

	factorRefinementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carl_factor_refinements_total",
		Help: "Interned factors split along a newly learned divisor",
	})

	factorizationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carl_factorizations_total",
		Help: "Polynomials factorized, excluding memoized results",
	})

	factorizationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "carl_factorization_duration_seconds",
		Help:    "Time spent factorizing a single polynomial",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	})
)
