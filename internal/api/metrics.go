package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_http_requests_total",
		Help: "Total number of API requests by route and status code",
	}, []string{"route", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenders_http_request_duration_seconds",
		Help:    "API request duration by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
