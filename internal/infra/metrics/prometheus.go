package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imageprocessor_records_processed_total",
		Help: "Total number of frame records processed, by outcome",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imageprocessor_stage_duration_seconds",
		Help:    "Duration of each per-record pipeline stage",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"stage"})

	FacesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageprocessor_faces_detected_total",
		Help: "Total number of faces reported by the detector",
	})

	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "imageprocessor_batch_size",
		Help:    "Number of records per processed batch",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	InFlightBatches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "imageprocessor_in_flight_batches",
		Help: "Number of batches currently being processed",
	})
)
