package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"google.golang.org/grpc/credentials"

	"github.com/tbourn/go-chai-catalog/internal/config"
)

// APIBasePathKey records where the catalog API is mounted.
const APIBasePathKey = attribute.Key("chai.api.base_path")

// Replaced in tests so no collector is dialed.
var newSpanExporterFn = func(ctx context.Context, client otlptrace.Client) (sdktrace.SpanExporter, error) {
	return otlptrace.New(ctx, client)
}

// dbSystem maps DB_DRIVER to the semconv db.system value.
func dbSystem(driver string) attribute.KeyValue {
	switch driver {
	case "postgres":
		return semconv.DBSystemPostgreSQL
	case "sqlite":
		return semconv.DBSystemSqlite
	default:
		return semconv.DBSystemKey.String(driver)
	}
}

// catalogResource describes this process to the collector: service identity,
// deployment environment, the backing database and the API mount point.
func catalogResource(ctx context.Context, cfg config.Config, version string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.OTEL.ServiceName),
		semconv.ServiceVersion(version),
		dbSystem(cfg.DB.Driver),
		APIBasePathKey.String(cfg.APIBasePath),
	}
	if cfg.OTEL.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.OTEL.Environment))
	}
	return resource.New(ctx, resource.WithAttributes(attrs...))
}

// SetupOTel installs the global tracer provider and propagators used by the
// otelgin middleware, the gorm tracing plugin and the service spans. When
// tracing is disabled it leaves the no-op globals in place.
func SetupOTel(ctx context.Context, cfg config.Config, version string) (func(context.Context) error, error) {
	if !cfg.OTEL.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTEL.Endpoint)}
	if cfg.OTEL.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	exp, err := newSpanExporterFn(ctx, otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, err
	}

	res, err := catalogResource(ctx, cfg, version)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.OTEL.SampleRatio))),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
