package telemetry_test

import (
	"testing"
	"time"

	"github.com/commhub/backend/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewLetterMetrics(reg)

	m.CountGeneration(telemetry.OutcomeSuccess)
	m.CountGeneration(telemetry.OutcomeSuccess)
	m.CountGeneration(telemetry.OutcomeFailure)
	m.ObserveStage("render", 120*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Generated().WithLabelValues(telemetry.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generated().WithLabelValues(telemetry.OutcomeFailure)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{"letters_generated_total", "letter_stage_duration_seconds"}, names)
}

func TestLetterMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.LetterMetrics
	m.CountGeneration(telemetry.OutcomeSuccess)
	m.ObserveStage("render", time.Second)
}
