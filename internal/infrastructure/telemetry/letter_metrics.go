package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Generation outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// LetterMetrics holds the Prometheus collectors of the letter pipeline
type LetterMetrics struct {
	generated     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// NewLetterMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered, which is what tests want.
func NewLetterMetrics(reg prometheus.Registerer) *LetterMetrics {
	m := &LetterMetrics{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "letters_generated_total",
			Help: "Letter generation attempts by outcome.",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "letter_stage_duration_seconds",
			Help:    "Duration of each letter generation stage.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.generated, m.stageDuration)
	}
	return m
}

// ObserveStage records how long a stage took
func (m *LetterMetrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// CountGeneration increments the outcome counter
func (m *LetterMetrics) CountGeneration(outcome string) {
	if m == nil {
		return
	}
	m.generated.WithLabelValues(outcome).Inc()
}

// Generated exposes the outcome counter, mainly for assertions
func (m *LetterMetrics) Generated() *prometheus.CounterVec {
	return m.generated
}
