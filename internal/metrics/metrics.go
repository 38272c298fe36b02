package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faresearch_searches_total",
		Help: "Number of journey searches started.",
	})
	SearchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faresearch_searches_failed_total",
		Help: "Number of journey searches that aborted with an error.",
	})
	JourneysPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faresearch_journeys_persisted_total",
		Help: "Number of journeys stored.",
	})
	ProviderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faresearch_provider_failures_total",
		Help: "Number of fare provider calls that failed or returned malformed payloads.",
	})
)

// Handler serves the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
