// Package telemetry bootstraps OpenTelemetry trace and log export over
// OTLP/HTTP and installs the providers as the process globals.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/amp-labs/fetchsim/config"
	"github.com/amp-labs/fetchsim/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// ShutdownFunc flushes and stops whatever Initialize started.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Initialize sets up tracing and log export for the given configuration and
// returns the function that flushes them. When export is disabled, or no
// endpoint is configured, nothing is installed and the returned function is
// a no-op.
func Initialize(ctx context.Context, cfg config.Telemetry, version string) (ShutdownFunc, error) {
	log := logger.Get(ctx)

	if !cfg.Enabled {
		log.Debug("OpenTelemetry export is disabled")

		return noopShutdown, nil
	}

	if cfg.Endpoint == "" {
		log.Warn("OpenTelemetry endpoint not configured, export will be disabled")

		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
		otlptracehttp.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(cfg.Endpoint),
		otlploghttp.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to create OTLP log exporter: %w", err),
			traceExporter.Shutdown(ctx))
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	global.SetLoggerProvider(loggerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("OpenTelemetry export initialized",
		"service", cfg.ServiceName,
		"version", version,
		"endpoint", cfg.Endpoint)

	return func(ctx context.Context) error {
		logger.Get(ctx).Debug("shutting down OpenTelemetry providers")

		return errors.Join(
			tracerProvider.Shutdown(ctx),
			loggerProvider.Shutdown(ctx))
	}, nil
}
