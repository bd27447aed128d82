package trace

import (
	"context"
	"time"

	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type InitConfig struct {
	ServiceName    string
	Version        string
	TraceEndpoint  string
	MetricEndpoint string
	TraceAK        string
	Stdout         bool
}

var shutdowns []func(context.Context) error

// InitTrace installs global tracer and meter providers. With no endpoint and
// Stdout off the otel no-op providers stay in place.
func InitTrace(ctx context.Context, conf *InitConfig) {
	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", conf.ServiceName),
			attribute.String("service.version", conf.Version),
		))
	if err != nil {
		logger.Errorf(ctx, "init trace resource err: %+v", err)
		res = resource.Default()
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	if exp := newTraceExporter(ctx, conf); exp != nil {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if exp := newMetricExporter(ctx, conf); exp != nil {
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(30*time.Second))),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)

		if err := host.Start(host.WithMeterProvider(mp)); err != nil {
			logger.Errorf(ctx, "start host metrics err: %+v", err)
		}
		if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
			logger.Errorf(ctx, "start runtime metrics err: %+v", err)
		}
	}
}

func newTraceExporter(ctx context.Context, conf *InitConfig) sdktrace.SpanExporter {
	switch {
	case conf.TraceEndpoint != "":
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(conf.TraceEndpoint),
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithHeaders(authHeaders(conf)))
		if err != nil {
			logger.Errorf(ctx, "init otlp trace exporter err: %+v", err)
			return nil
		}
		return exp
	case conf.Stdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			logger.Errorf(ctx, "init stdout trace exporter err: %+v", err)
			return nil
		}
		return exp
	default:
		return nil
	}
}

func newMetricExporter(ctx context.Context, conf *InitConfig) sdkmetric.Exporter {
	switch {
	case conf.MetricEndpoint != "":
		exp, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(conf.MetricEndpoint),
			otlpmetricgrpc.WithInsecure(),
			otlpmetricgrpc.WithHeaders(authHeaders(conf)))
		if err != nil {
			logger.Errorf(ctx, "init otlp metric exporter err: %+v", err)
			return nil
		}
		return exp
	case conf.Stdout:
		exp, err := stdoutmetric.New()
		if err != nil {
			logger.Errorf(ctx, "init stdout metric exporter err: %+v", err)
			return nil
		}
		return exp
	default:
		return nil
	}
}

func authHeaders(conf *InitConfig) map[string]string {
	if conf.TraceAK == "" {
		return nil
	}
	return map[string]string{"authorization": conf.TraceAK}
}

func CloseTrace() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, shutdown := range shutdowns {
		if err := shutdown(ctx); err != nil {
			logger.Errorf(ctx, "shutdown telemetry provider err: %+v", err)
		}
	}
	shutdowns = nil
}
