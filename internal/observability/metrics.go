package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

var (
	DatasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Number of records in the loaded dataset",
		},
	)

	RecomputeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recompute_total",
			Help:      "Summary recomputations by caller",
		},
		[]string{"source"},
	)

	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Duration of filter and aggregation passes",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	FilteredRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filtered_rows",
			Help:      "Rows retained by a filter pass",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	ExportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_total",
			Help:      "Filtered data exports by format",
		},
		[]string{"format"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status",
		},
		[]string{"method", "status"},
	)
)
