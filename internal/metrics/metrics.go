// Package metrics holds the Prometheus collectors for the catalog API.
//
//	cinestream_http_requests_total            counter: requests by method/route/status
//	cinestream_http_request_duration_seconds  histogram: latency by method/route
//	cinestream_provider_requests_total        counter: metadata provider calls by endpoint/outcome
//	cinestream_relation_toggles_total         counter: favorite/watchlist toggles by kind/outcome
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK          = "ok"
	OutcomeCached      = "cached"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinestream_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cinestream_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

var ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinestream_provider_requests_total",
	Help: "Metadata provider requests by endpoint and outcome.",
}, []string{"endpoint", "outcome"})

var RelationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinestream_relation_toggles_total",
	Help: "Favorite and watchlist toggles by kind and resulting status.",
}, []string{"kind", "status"})

// Handler exposes the default registry for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
