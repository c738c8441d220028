package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the OTel meter and tracer used by the assistant.
// The zero value is usable and records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	tracer        trace.Tracer
	askCounter    otelmetric.Int64Counter
	askDuration   otelmetric.Float64Histogram
}

// New wires an OTel meter provider onto the Prometheus exporter, so OTel
// instruments appear on the same /metrics endpoint.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	askCounter, err := meter.Int64Counter(
		"assistant.asks",
		otelmetric.WithDescription("Number of questions answered"),
	)
	if err != nil {
		return &Observability{}, err
	}

	askDuration, err := meter.Float64Histogram(
		"assistant.ask.duration",
		otelmetric.WithDescription("Ask pipeline duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{}, err
	}

	return &Observability{
		meterProvider: provider,
		tracer:        otel.Tracer(serviceName),
		askCounter:    askCounter,
		askDuration:   askDuration,
	}, nil
}

// StartSpan opens a span on the global tracer provider.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("erp-assistant")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordAsk(ctx context.Context, requestType string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(attribute.String("request_type", requestType))
	if o.askCounter != nil {
		o.askCounter.Add(ctx, 1, attrs)
	}
	if o.askDuration != nil {
		o.askDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
