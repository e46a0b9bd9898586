package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the engine's prometheus collectors.
type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	Orders    *prometheus.CounterVec
	Swept     prometheus.Counter
}

// New registers and returns the collectors. Call once per process.
func New() *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tshirt",
		Subsystem: "orders",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tshirt",
		Subsystem: "orders",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tshirt",
		Subsystem: "orders",
		Name:      "operations_total",
		Help:      "Order operations by outcome.",
	}, []string{"op", "outcome"})
	swept := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tshirt",
		Subsystem: "orders",
		Name:      "review_timeouts_swept_total",
		Help:      "Orders demoted from payment_reviewing by the sweep.",
	})

	prometheus.MustRegister(requests, latency, orders, swept)
	return &Metrics{Requests: requests, LatencyMS: latency, Orders: orders, Swept: swept}
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
