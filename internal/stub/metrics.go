package stub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency per route and status class
	RequestDuration *prometheus.HistogramVec

	// Traffic
	TotalRequests *prometheus.CounterVec

	// Rejections: auth failures, rate limits, invalid transitions
	ErrorTotal *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null registerer keeps tests free of global registry collisions.
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stub_request_duration_seconds",
			Help:    "Histogram of stub API request latencies.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"route", "status"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stub_requests_total",
			Help: "Total number of processed requests.",
		}, []string{"route", "method"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stub_errors_total",
			Help: "Total number of rejected requests by type.",
		}, []string{"type"}), // auth, rate_limit, validation, not_found
	}
}
