package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecohealth_provider_calls_total",
			Help: "Total upstream weather provider API calls",
		},
		[]string{"provider", "endpoint", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecohealth_provider_latency_seconds",
			Help:    "Upstream provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "endpoint"},
	)

	GeocodeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecohealth_geocode_lookups_total",
			Help: "Total geocoding lookups",
		},
		[]string{"status"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecohealth_recommendations_total",
			Help: "Total health recommendation generations",
		},
		[]string{"source"},
	)

	NewsletterSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecohealth_newsletter_sends_total",
			Help: "Total newsletter emails sent",
		},
		[]string{"kind", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecohealth_http_request_duration_seconds",
			Help:    "Dashboard and API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
