// Package metrics holds the gateway's Prometheus collectors. Everything is
// registered once at init on the default registry and exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RPCCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_calls_total",
		Help: "Proxied RPC calls by provider.",
	}, []string{"provider"})

	RPCRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_retries_total",
		Help: "Requests that needed n retries before completing.",
	}, []string{"attempts"})

	RPCFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_failures_total",
		Help: "Upstream transport failures by provider.",
	}, []string{"provider"})

	HTTPStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_status_total",
		Help: "Upstream HTTP statuses by provider.",
	}, []string{"provider", "status"})

	RateLimitedResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limited_responses_total",
		Help: "Upstream responses normalized as rate-limited, by provider.",
	}, []string{"provider"})

	WebsocketConnections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_connections_total",
		Help: "Accepted websocket upgrades by chain.",
	}, []string{"chain"})

	IdentityLookups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_lookups_total",
		Help: "ENS identity lookups served.",
	})

	RateLimitStoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_store_errors_total",
		Help: "Shared-store failures during rate limit checks (failed open).",
	})

	AnalyticsEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analytics_events_dropped_total",
		Help: "Analytics events dropped because the emitter buffer was full.",
	})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_latency_seconds",
		Help:    "Upstream call latency by provider.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	HandlerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "handler_latency_seconds",
		Help:    "Handler latency by handler name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"handler"})

	RateLimitCheck = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rate_limit_check_seconds",
		Help:    "Latency of rate limit checks.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
	})
)

// ObserveUpstreamStatus records the per-status counter for one upstream call.
func ObserveUpstreamStatus(provider string, status int) {
	HTTPStatus.WithLabelValues(provider, strconv.Itoa(status)).Inc()
}

// Handler returns the Prometheus text exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
