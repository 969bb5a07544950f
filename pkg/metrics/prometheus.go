// Package metrics implements the domain Metrics interface on Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain/repository.Metrics using Prometheus.
type Recorder struct {
	recordsParsed      *prometheus.CounterVec
	recordsDiscarded   *prometheus.CounterVec
	fillsClassified    *prometheus.CounterVec
	windowsSkipped     *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	windowLatency      prometheus.Histogram
	makerFraction      prometheus.Gauge
	classificationRate prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		recordsParsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makerlens_records_parsed_total",
				Help: "Input records accepted during normalization",
			},
			[]string{"kind"},
		),
		recordsDiscarded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makerlens_records_discarded_total",
				Help: "Input records rejected during normalization",
			},
			[]string{"kind"},
		),
		fillsClassified: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makerlens_fills_classified_total",
				Help: "Fills by provenance label",
			},
			[]string{"label"},
		),
		windowsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makerlens_windows_skipped_total",
				Help: "Windows excluded from classification by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makerlens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		windowLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "makerlens_window_duration_seconds",
				Help:    "Per-window classification duration",
				Buckets: prometheus.DefBuckets,
			},
		),
		makerFraction: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "makerlens_maker_fraction",
				Help: "Maker fraction over classified fills in the last run",
			},
		),
		classificationRate: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "makerlens_classification_rate",
				Help: "Classified over total fills in the last run",
			},
		),
	}
}

// RecordRecords counts accepted and rejected records for one input kind.
func (r *Recorder) RecordRecords(kind string, parsed, discarded int) {
	r.recordsParsed.WithLabelValues(kind).Add(float64(parsed))
	r.recordsDiscarded.WithLabelValues(kind).Add(float64(discarded))
}

// RecordFill counts one classified fill by label.
func (r *Recorder) RecordFill(label string) {
	r.fillsClassified.WithLabelValues(label).Inc()
}

// RecordWindowSkipped counts a skipped window by reason.
func (r *Recorder) RecordWindowSkipped(reason string) {
	r.windowsSkipped.WithLabelValues(reason).Inc()
}

// RecordWindowLatency records one window's classification duration.
func (r *Recorder) RecordWindowLatency(seconds float64) {
	r.windowLatency.Observe(seconds)
}

// RecordMakerFraction sets the run-level maker fraction gauge.
func (r *Recorder) RecordMakerFraction(frac float64) {
	r.makerFraction.Set(frac)
}

// RecordClassificationRate sets the run-level classification rate gauge.
func (r *Recorder) RecordClassificationRate(rate float64) {
	r.classificationRate.Set(rate)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
