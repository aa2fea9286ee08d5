package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"hygieia-reporter/src/logger"
)

func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	ctx := context.Background()
	shutdown := InitTracer(ctx, &buf, logger.NewSilentLogger())

	_, span := otel.Tracer("test").Start(ctx, "POST /build")
	span.End()

	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "POST /build") {
		t.Errorf("exported spans missing span name:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), ServiceName) {
		t.Errorf("exported spans missing service name")
	}
}
