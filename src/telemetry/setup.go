// Package telemetry configures OpenTelemetry tracing for collector requests.
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"hygieia-reporter/src/logger"
)

// ServiceName identifies the reporter in exported spans.
const ServiceName = "hygieia-reporter"

// InitTracer installs a global tracer provider that writes spans to w.
// The returned function flushes and shuts it down. When the exporter cannot
// be created, tracing stays disabled and the shutdown is a no-op.
func InitTracer(ctx context.Context, w io.Writer, log logger.Logger) func(context.Context) error {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Warn("telemetry exporter init failed: %v", err)
		return func(context.Context) error { return nil }
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
		)),
	)

	otel.SetTracerProvider(provider)

	return provider.Shutdown
}
