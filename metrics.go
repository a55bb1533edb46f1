package protect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "protect_client",
			Name:      "requests_total",
			Help:      "HTTP requests issued, by method and status class.",
		},
		[]string{"method", "status"},
	)

	tokenRenewalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "protect_client",
			Name:      "token_renewals_total",
			Help:      "Successful access-token refreshes.",
		},
	)

	tokenRenewalFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "protect_client",
			Name:      "token_renewal_failures_total",
			Help:      "Failed access-token refreshes.",
		},
	)

	retryAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "protect_client",
			Name:      "retry_attempts_total",
			Help:      "Backoff retries performed for idempotent reads.",
		},
	)

	cacheFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "protect_client",
			Name:      "cache_fallbacks_total",
			Help:      "Reads served from the local cache after a fetch failure.",
		},
		[]string{"key"},
	)
)
