package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by the letter pipeline
const TracerName = "github.com/commhub/backend/letters"

// Attribute keys recorded on letter spans
const (
	AttrTenantID   = attribute.Key("commhub.tenant_id")
	AttrMemberID   = attribute.Key("commhub.member_id")
	AttrTemplateID = attribute.Key("commhub.template_id")
	AttrLetterID   = attribute.Key("commhub.letter_id")
	AttrStage      = attribute.Key("commhub.letter.stage")
)

// StartSpan starts an internal span on the global provider. The caller ends
// it, usually through EndSpan.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartStage starts the span of one generation stage, named letter.<stage>
func StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return StartSpan(ctx, "letter."+stage, AttrStage.String(stage))
}

// LetterRequest returns the attributes identifying a generation request.
// Empty values are left out.
func LetterRequest(tenantID, memberID, templateID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	for _, kv := range []attribute.KeyValue{
		AttrTenantID.String(tenantID),
		AttrMemberID.String(memberID),
		AttrTemplateID.String(templateID),
	} {
		if kv.Value.AsString() != "" {
			attrs = append(attrs, kv)
		}
	}
	return attrs
}

// EndSpan closes span, marking it failed when err is non-nil
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID returns the trace ID of the span in ctx, or ""
func TraceID(ctx context.Context) string {
	id := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !id.IsValid() {
		return ""
	}
	return id.String()
}
