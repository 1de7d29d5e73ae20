package observability

import (
	"context"
	"io"
	"os"

	"portfolio-generator/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "portfolio-generator"

// InitTracing installs a global tracer provider. When stdout is false spans
// are sampled but not exported. The returned func flushes and stops it.
func InitTracing(ctx context.Context, log *logger.Logger, stdout bool) func(context.Context) error {
	return initTracing(ctx, log, stdout, os.Stdout)
}

func initTracing(ctx context.Context, log *logger.Logger, stdout bool, w io.Writer) func(context.Context) error {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		log.Warn("otel resource init failed (continuing)", "error", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if stdout {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Warn("otel exporter init failed (continuing)", "error", err)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exporter))
		}
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	log.Debug("otel tracing initialized", "service", serviceName, "stdout", stdout)
	return tp.Shutdown
}
