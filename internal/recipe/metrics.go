package recipe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registration metrics
	recipesRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "millwork_recipes_registered_total",
			Help: "Total number of recipes accepted at registration",
		},
		[]string{"handler"},
	)
	recipesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "millwork_recipes_rejected_total",
			Help: "Total number of recipe definitions rejected at registration",
		},
		[]string{"handler", "code"},
	)

	// Cache metrics
	cacheBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "millwork_recipe_cache_build_duration_seconds",
			Help:    "Duration of recipe cache builds in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"handler"},
	)
	cacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "millwork_recipe_cache_keys",
			Help: "Number of distinct material hashes in a recipe cache",
		},
		[]string{"handler"},
	)
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "millwork_recipe_lookup_hits_total",
			Help: "Total number of lookups that matched a recipe",
		},
		[]string{"handler"},
	)
	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "millwork_recipe_lookup_misses_total",
			Help: "Total number of lookups that matched no recipe",
		},
		[]string{"handler"},
	)
	exportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "millwork_recipe_export_failures_total",
			Help: "Total number of failed recipe exports",
		},
		[]string{"handler"},
	)
)
