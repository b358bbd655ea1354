package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for anonymization runs.
type Metrics struct {
	JobsTotal            *prometheus.CounterVec
	PersonasGenerated    prometheus.Counter
	AdjustmentIterations prometheus.Histogram
	FinalPopulationRisk  prometheus.Histogram
}

// New creates and registers all anonymization metrics.
func New() *Metrics {
	return &Metrics{
		JobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "personaforge_anonymize_jobs_total",
			Help: "Total anonymization jobs by final status",
		}, []string{"status"}),
		PersonasGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "personaforge_anonymize_personas_generated_total",
			Help: "Total personas produced across all jobs",
		}),
		AdjustmentIterations: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "personaforge_anonymize_adjustment_iterations",
			Help:    "Privacy adjustment iterations per job",
			Buckets: prometheus.LinearBuckets(0, 1, 6),
		}),
		FinalPopulationRisk: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "personaforge_anonymize_final_population_risk",
			Help:    "Final population average risk per job",
			Buckets: []float64{0.01, 0.05, 0.1, 0.15, 0.25, 0.5, 1},
		}),
	}
}

// RecordJob records the outcome of a finished job.
func (m *Metrics) RecordJob(status string, personas, iterations int, risk float64) {
	m.JobsTotal.WithLabelValues(status).Inc()
	m.PersonasGenerated.Add(float64(personas))
	m.AdjustmentIterations.Observe(float64(iterations))
	m.FinalPopulationRisk.Observe(risk)
}
