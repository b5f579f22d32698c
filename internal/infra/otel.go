package infra

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"learnez/pkg/logger"
)

const ServiceName = "learnez"

// InitOTel installs the global tracer provider when OTEL_ENABLED is set and
// returns its shutdown func. When disabled the global no-op provider stays in
// place and the returned func does nothing.
func InitOTel(ctx context.Context, cfg *Config, log *logger.Logger) func(context.Context) error {
	if !cfg.OtelEnabled {
		return func(context.Context) error { return nil }
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(ServiceName),
		attribute.String("deployment.environment", cfg.AppEnv),
	))
	if err != nil {
		log.Warn("otel resource init failed (continuing)", "error", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.OtelSampleRatio)))),
		sdktrace.WithResource(res),
	}
	exporter, err := buildTraceExporter(ctx, cfg, log)
	if err != nil {
		log.Warn("otel exporter init failed (continuing)", "error", err)
	} else {
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("otel tracing initialized", "endpoint", cfg.OtelEndpoint)
	return tp.Shutdown
}

func buildTraceExporter(ctx context.Context, cfg *Config, log *logger.Logger) (sdktrace.SpanExporter, error) {
	if cfg.OtelEndpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OtelEndpoint)}
		if cfg.OtelInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	log.Warn("otel using stdout exporter (no OTLP endpoint configured)")
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
