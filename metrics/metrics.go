// Package metrics exposes prometheus counters for provider health and session churn.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raidenhub/phim/constant"
)

// Registry holds every phim collector. It is private to the process so tests can read it without global state from other libraries.
var Registry = prometheus.NewRegistry()

var (
	Retries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.Phim,
		Name:      "retries_total",
		Help:      "Second attempts issued by the retry-once wrapper.",
	}, []string{"op"})

	ProviderFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.Phim,
		Name:      "provider_failures_total",
		Help:      "Provider calls that failed after the retry and were replaced by an empty result.",
	}, []string{"provider", "op"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.Phim,
		Name:      "logins_total",
		Help:      "Login attempts against the authenticated link resolver.",
	}, []string{"outcome"})

	SessionExpiries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: constant.Phim,
		Name:      "session_expiries_total",
		Help:      "Protected calls rejected because the session token expired.",
	})

	SubtitleResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.Phim,
		Name:      "subtitle_results_total",
		Help:      "Subtitle results contributed by each provider before ranking.",
	}, []string{"source"})
)

func init() {
	Registry.MustRegister(
		Retries,
		ProviderFailures,
		Logins,
		SessionExpiries,
		SubtitleResults,
		collectors.NewGoCollector(),
	)
}

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
