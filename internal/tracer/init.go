package tracer

import (
	"context"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "qna-chat-backend"

func noopShutdown(context.Context) error { return nil }

// InitTracer wires the global OpenTelemetry provider to an OTLP HTTP
// collector and returns the shutdown func that flushes pending spans.
// Tracing is opt-in: without OTEL_ENABLED=true this is a no-op, so the
// request path carries no exporter overhead in environments that do not
// run a collector.
func InitTracer() func(context.Context) error {
	if os.Getenv("OTEL_ENABLED") != "true" {
		log.Println("tracing disabled, set OTEL_ENABLED=true to turn it on")
		return noopShutdown
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		// A missing collector should not keep the chat service down.
		log.Printf("tracing disabled, OTLP exporter setup failed: %v", err)
		return noopShutdown
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	log.Printf("tracing enabled, exporting to %s", endpoint)

	return tp.Shutdown
}
