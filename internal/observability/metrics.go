package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a report run.
type Metrics struct {
	RecordsLoaded   prometheus.Counter
	PipelineRunning prometheus.Gauge
	EventTypes      prometheus.Gauge

	// Batch processing metrics.
	BatchSize     prometheus.Histogram
	StageDuration *prometheus.HistogramVec // labels: stage={load,report,publish}

	// Exponent decoding, labelled so zero-factor decodes are visible.
	ExponentCodes *prometheus.CounterVec // labels: field={property,crop}, class={known,empty,unknown}

	// Report sinks.
	ReportPublishes *prometheus.CounterVec // labels: sink, outcome={success,error}
}

// NewMetrics creates and registers all report metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsLoaded,
		m.PipelineRunning,
		m.EventTypes,
		m.BatchSize,
		m.StageDuration,
		m.ExponentCodes,
		m.ReportPublishes,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "records_loaded_total",
			Help:      "Total storm event records read from the dataset.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_report",
			Name:      "pipeline_running",
			Help:      "1 while a report run is in progress, 0 otherwise.",
		}),
		EventTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_report",
			Name:      "event_types",
			Help:      "Distinct event-type groups in the last aggregate.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_report",
			Name:      "batch_size",
			Help:      "Number of records per batch extracted from the dataset.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_report",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"stage"}),
		ExponentCodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "exponent_codes_total",
			Help:      "Damage exponent codes decoded, by field and class.",
		}, []string{"field", "class"}),
		ReportPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "report_publishes_total",
			Help:      "Report publish attempts by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}
}
