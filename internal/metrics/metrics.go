package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Subject outcomes
const (
	OutcomeUsed    = "used"
	OutcomeNoLabel = "no_label"
	OutcomeError   = "error"
)

// Recorder collects the metrics of one batch run on its own registry, so
// repeated runs in one process never share counters.
type Recorder struct {
	registry *prometheus.Registry

	subjects          *prometheus.CounterVec
	extractionSeconds prometheus.Histogram
	runSeconds        prometheus.Gauge
	columns           prometheus.Gauge
	nodes             prometheus.Gauge
}

// NewRecorder creates a recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		subjects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphfeat_subjects_total",
				Help: "Subjects seen by the batch, by outcome",
			},
			[]string{"outcome"}, // used, no_label, error
		),
		extractionSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "graphfeat_extraction_seconds",
				Help:    "Per-subject feature extraction time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
		),
		runSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "graphfeat_run_seconds",
			Help: "Wall time of the whole batch in seconds",
		}),
		columns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "graphfeat_table_columns",
			Help: "Number of columns in the feature table",
		}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "graphfeat_matrix_nodes",
			Help: "Node count fixed by the first processed subject",
		}),
	}
}

// RecordSubject increments the subject counter for an outcome
func (r *Recorder) RecordSubject(outcome string) {
	r.subjects.WithLabelValues(outcome).Inc()
}

// ObserveExtraction records the time spent extracting one subject
func (r *Recorder) ObserveExtraction(d time.Duration) {
	r.extractionSeconds.Observe(d.Seconds())
}

// SetRunDuration records the batch wall time
func (r *Recorder) SetRunDuration(d time.Duration) {
	r.runSeconds.Set(d.Seconds())
}

// SetSchema records the table shape
func (r *Recorder) SetSchema(nodes, columns int) {
	r.nodes.Set(float64(nodes))
	r.columns.Set(float64(columns))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the metrics in the Prometheus text format, for the
// node_exporter textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
