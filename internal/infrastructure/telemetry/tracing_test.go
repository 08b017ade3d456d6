package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/commhub/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]string {
	m := make(map[attribute.Key]string, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value.Emit()
	}
	return m
}

func TestStartStage(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, parent := telemetry.StartSpan(context.Background(), "letter.generate")
	_, span := telemetry.StartStage(ctx, "merge")
	telemetry.EndSpan(span, nil)
	telemetry.EndSpan(parent, nil)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	stage := spans[0]
	assert.Equal(t, "letter.merge", stage.Name())
	assert.Equal(t, trace.SpanKindInternal, stage.SpanKind())
	assert.Equal(t, "merge", attrMap(stage.Attributes())[telemetry.AttrStage])
	assert.Equal(t, spans[1].SpanContext().SpanID(), stage.Parent().SpanID())
	assert.Equal(t, codes.Ok, stage.Status().Code)
}

func TestEndSpan_RecordsError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartStage(context.Background(), "publish")
	telemetry.EndSpan(span, errors.New("bucket gone"))

	require.Len(t, sr.Ended(), 1)
	ended := sr.Ended()[0]
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "bucket gone", ended.Status().Description)
	require.Len(t, ended.Events(), 1)
	assert.Equal(t, "exception", ended.Events()[0].Name)
}

func TestLetterRequest(t *testing.T) {
	tests := []struct {
		name                 string
		tenant, member, tmpl string
		want                 map[attribute.Key]string
	}{
		{"all set", "t1", "m1", "tp1", map[attribute.Key]string{
			telemetry.AttrTenantID: "t1", telemetry.AttrMemberID: "m1", telemetry.AttrTemplateID: "tp1",
		}},
		{"tenant only", "t1", "", "", map[attribute.Key]string{telemetry.AttrTenantID: "t1"}},
		{"none", "", "", "", map[attribute.Key]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, attrMap(telemetry.LetterRequest(tt.tenant, tt.member, tt.tmpl)))
		})
	}
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, telemetry.TraceID(context.Background()))

	setupTestTracer(t)
	ctx, span := telemetry.StartSpan(context.Background(), "letter.generate")
	defer span.End()
	assert.Equal(t, span.SpanContext().TraceID().String(), telemetry.TraceID(ctx))
}
