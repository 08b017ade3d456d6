// Package middleware provides HTTP middleware for the communication API.
package middleware

import (
	"net/http"

	"github.com/commhub/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds client supplied request ids
const MaxRequestIDLength = 128

// TraceIDHeader carries the server span's trace ID back to the client
const TraceIDHeader = "X-Trace-ID"

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName    string
	Enabled        bool
	TracerProvider trace.TracerProvider // global provider when nil
}

// Tracing returns OpenTelemetry server spans via otelgin. Spans are named
// after the route pattern and 4xx/5xx responses mark them as errors.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher adds request and caller attributes to the server span, echoes
// its trace ID and marks error responses. It runs after JWT authentication.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if traceID := telemetry.TraceID(c.Request.Context()); traceID != "" {
			c.Header(TraceIDHeader, traceID)
		}

		if requestID := c.GetString("request_id"); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if tenantID := GetJWTTenantID(c); tenantID != "" {
			span.SetAttributes(telemetry.AttrTenantID.String(tenantID))
		}

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		switch {
		case status >= http.StatusInternalServerError:
			span.SetStatus(codes.Error, "Internal Server Error")
		case status == http.StatusUnauthorized:
			span.SetStatus(codes.Error, "Unauthorized")
		case status == http.StatusForbidden:
			span.SetStatus(codes.Error, "Forbidden")
		case status == http.StatusNotFound:
			span.SetStatus(codes.Error, "Not Found")
		default:
			span.SetStatus(codes.Error, "Client Error")
		}
	}
}
