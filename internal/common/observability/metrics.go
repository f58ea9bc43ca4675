package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OpenTelemetry meter provider. Instruments are
// exported through the default prometheus registry, next to the promauto
// vectors in the metrics package.
type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	matchesGenerated   otelmetric.Int64Counter
	matchesPersisted   otelmetric.Int64Counter
	scholarshipsByStat otelmetric.Int64Counter
}

// New registers the exporter. On failure it returns a no-op instance and the error.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	matchesGenerated, _ := meter.Int64Counter(
		"scholarship.matches.generated",
		otelmetric.WithDescription("Scholarship matches returned by the LLM"),
	)
	matchesPersisted, _ := meter.Int64Counter(
		"scholarship.matches.persisted",
		otelmetric.WithDescription("Scholarship matches written to the store"),
	)
	scholarshipsByStat, _ := meter.Int64Counter(
		"scholarship.status.transitions",
		otelmetric.WithDescription("Scholarship promote/demote transitions"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		matchesGenerated:   matchesGenerated,
		matchesPersisted:   matchesPersisted,
		scholarshipsByStat: scholarshipsByStat,
	}, nil
}

func (o *Observability) RecordMatchesGenerated(ctx context.Context, n int) {
	if o != nil && o.matchesGenerated != nil {
		o.matchesGenerated.Add(ctx, int64(n))
	}
}

func (o *Observability) RecordMatchesPersisted(ctx context.Context, n int) {
	if o != nil && o.matchesPersisted != nil {
		o.matchesPersisted.Add(ctx, int64(n))
	}
}

func (o *Observability) RecordTransition(ctx context.Context, status string) {
	if o != nil && o.scholarshipsByStat != nil {
		o.scholarshipsByStat.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("status", status)))
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
