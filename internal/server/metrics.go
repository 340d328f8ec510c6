package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics are registered on a per-server registry so several servers (and
// tests) can coexist in one process.
type metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	items       *prometheus.HistogramVec
	rateLimited prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "qbar",
				Name:      "api_requests_total",
				Help:      "Record API requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "qbar",
				Name:      "api_request_duration_seconds",
				Help:      "Record API latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		items: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "qbar",
				Name:      "api_items_returned",
				Help:      "Records returned per search, by filter type.",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"filter_type"},
		),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qbar",
			Name:      "api_rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.items, m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
