package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agri_summary"

// Metrics holds the Prometheus counters, histograms, and gauges for the summary pipeline.
type Metrics struct {
	DatasetsConsumed  prometheus.Counter
	SummariesProduced prometheus.Counter
	TransformErrors   *prometheus.CounterVec // labels: reason={decode,missing_field,other}
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Summary content metrics, labelled by the source that requested the
	// summary (kafka or http).
	ValidationFailures *prometheus.CounterVec // labels: field, source
	RecordsSummarized  *prometheus.CounterVec // labels: source
	EmptyDatasets      *prometheus.CounterVec // labels: source
	IdealDays          *prometheus.CounterVec // labels: source
	RiskEvents         *prometheus.CounterVec // labels: risk, source
	SummaryRequests    *prometheus.CounterVec // labels: outcome={success,invalid,error}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetsConsumed,
		m.SummariesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ValidationFailures,
		m.RecordsSummarized,
		m.EmptyDatasets,
		m.IdealDays,
		m.RiskEvents,
		m.SummaryRequests,
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
		DatasetsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_consumed_total",
			Help:      "Total dataset messages read from the source topic.",
		}),
		SummariesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_produced_total",
			Help:      "Total summaries written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Dataset messages skipped without a summary, by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of dataset messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-summarize-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Datasets rejected for a missing required column, by column.",
		}, []string{"field", "source"}),
		RecordsSummarized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_summarized_total",
			Help:      "Total climate rows included in a summary.",
		}, []string{"source"}),
		EmptyDatasets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_datasets_total",
			Help:      "Datasets summarized with zero rows.",
		}, []string{"source"}),
		IdealDays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ideal_farming_days_total",
			Help:      "Total rows classified as ideal farming days.",
		}, []string{"source"}),
		RiskEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_events_total",
			Help:      "Rows exceeding a crop risk threshold, by risk category.",
		}, []string{"risk", "source"}),
		SummaryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_requests_total",
			Help:      "Synchronous HTTP summary requests by outcome.",
		}, []string{"outcome"}),
	}
}
