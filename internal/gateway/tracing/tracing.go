// Package tracing wires OpenTelemetry spans around dispatch and Postgres
// agent execution.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

var log = logger.For("tracing")

const tracerName = "hivegate/gateway"

// Config controls whether and where spans are exported. Tracing is
// optional: when Enabled is false, Setup installs the global no-op
// provider and every span stays a cheap inert object.
type Config struct {
	Enabled        bool
	ServiceVersion string
	OTLPEndpoint   string
}

// Provider wraps the SDK trace provider with shutdown capability.
type Provider struct {
	provider *sdktrace.TracerProvider
}

// Shutdown flushes any pending spans. Safe to call on a disabled Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("tracing: shutdown: %w", err)
	}
	return nil
}

// Setup configures the global OpenTelemetry tracer provider from cfg. When
// tracing is disabled it leaves the default no-op provider in place.
func Setup(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing: create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("hivegate"),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Infof("tracing enabled, exporting to %s", cfg.OTLPEndpoint)
	return &Provider{provider: provider}, nil
}

// StartDispatch opens the span wrapping one dispatcher run. Attributes
// never carry request or row content, only routing metadata (§ tracing).
func StartDispatch(ctx context.Context, tenantID string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dispatch")
	span.SetAttributes(attribute.String("hivegate.tenant_id", tenantID))
	return ctx, span
}

// SetDispatchAgent records which agent a dispatch span ended up running.
func SetDispatchAgent(span trace.Span, agent string) {
	span.SetAttributes(attribute.String("hivegate.agent", agent))
}

// StartPostgresQuery opens the span wrapping one Postgres agent
// transaction. Span attributes carry the tenant and row cap, never the
// generated SQL or its parameters.
func StartPostgresQuery(ctx context.Context, tenantID string, maxRows int) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "postgres.query")
	span.SetAttributes(
		attribute.String("hivegate.tenant_id", tenantID),
		attribute.Int("hivegate.max_rows", maxRows),
	)
	return ctx, span
}

// RecordError marks span as failed with err, if err is non-nil.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
