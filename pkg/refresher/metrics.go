package refresher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeCancelled = "cancelled"
)

var (
	refreshCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_refresh_cycles_total",
		Help: "Total refresh cycles by outcome",
	}, []string{"outcome"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tenders_refresh_duration_seconds",
		Help:    "Duration of a refresh cycle in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	snapshotTenders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenders_snapshot_tenders",
		Help: "Number of tenders in the last published snapshot",
	})

	snapshotLastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenders_snapshot_last_success_timestamp_seconds",
		Help: "Unix time of the last successful snapshot publish",
	})
)
