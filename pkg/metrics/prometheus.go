// Package metrics exposes Prometheus collectors for extraction runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dragy_extractions_total",
		Help: "Total number of extraction runs by outcome",
	}, []string{"outcome"})

	FieldsExtractedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dragy_fields_extracted_total",
		Help: "Total number of record fields that passed validation",
	}, []string{"field"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dragy_stage_duration_seconds",
		Help:    "Duration of extraction stages",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"stage"})

	AsyncJobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dragy_async_jobs_active",
		Help: "Number of asynchronous extraction jobs currently running",
	})
)
