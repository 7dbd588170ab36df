// Package otel installs the tracer provider behind match spans.
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config says where traces go. The binaries read it with the
// RPS_OTEL_ prefix, e.g. RPS_OTEL_ENDPOINT.
type Config struct {
	Endpoint    string  `env:"ENDPOINT"`
	Enabled     bool    `env:"ENABLED" envDefault:"true"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether Setup would install a provider.
func (c Config) Active() bool { return c.Enabled && c.Endpoint != "" }

// Setup installs an OTLP/HTTP tracer provider for service and returns
// its shutdown, which flushes pending spans. When cfg is not Active the
// global noop tracer stays in place and shutdown does nothing.
func Setup(ctx context.Context, service string, cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(service)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// sampler keeps every match at ratio 1 or more and none at 0 or less.
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}
