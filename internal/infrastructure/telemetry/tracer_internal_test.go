package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap/zaptest"
)

func TestInstall_ExportsWithServiceResource(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	exporter := tracetest.NewInMemoryExporter()
	tp, err := install(Config{
		SamplingRatio: 1,
		ServiceName:   "commhub-test",
		Environment:   "test",
	}, exporter, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())
	assert.Same(t, tp.sdk, otel.GetTracerProvider())

	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := StartStage(context.Background(), "merge")
	span.End()
	require.NoError(t, tp.sdk.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	res := spans[0].Resource
	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "commhub-test", name.AsString())
	version, ok := res.Set().Value(semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, "dev", version.AsString())
}
