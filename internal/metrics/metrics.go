package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transport metrics

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carekeep",
		Name:      "api_request_duration_seconds",
		Help:      "Latency of outbound CareKeep API requests.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path", "status"})

	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carekeep",
		Name:      "api_requests_total",
		Help:      "Total outbound CareKeep API requests.",
	}, []string{"method", "path", "status"})

	UnauthorizedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carekeep",
		Name:      "api_unauthorized_total",
		Help:      "Responses that invalidated the local session.",
	})

	// Realtime metrics

	RealtimeConnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carekeep",
		Name:      "realtime_connects_total",
		Help:      "Successful realtime channel connections.",
	})

	RealtimeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carekeep",
		Name:      "realtime_events_total",
		Help:      "Realtime events received, by event name.",
	}, []string{"event"})
)

func Register() {
	prometheus.MustRegister(
		RequestDuration,
		RequestsTotal,
		UnauthorizedTotal,
		RealtimeConnectsTotal,
		RealtimeEventsTotal,
	)
}

// NewServer exposes the collectors for the long-running dashboard.
// One-shot commands never bind it.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
