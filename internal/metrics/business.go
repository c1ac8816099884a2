package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records secret document operations.
type BusinessMetrics interface {
	// RecordOperation counts an operation ("secrets_get", "secrets_set", "token_issue")
	// with its outcome ("success", "warning", "error").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordDocumentKeys records the number of keys in the document last read or written.
	RecordDocumentKeys(ctx context.Context, keys int)
}

// businessMetrics implements BusinessMetrics using OpenTelemetry metrics.
// Every observation carries the store_driver attribute.
type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	keysGauge        metric.Int64Gauge
	storeDriver      attribute.KeyValue
}

// NewBusinessMetrics creates the business instruments under namespace.
func NewBusinessMetrics(
	meterProvider metric.MeterProvider,
	namespace string,
	storeDriver string,
) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of secret document operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of secret document operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	keysGauge, err := meter.Int64Gauge(
		fmt.Sprintf("%s_document_keys", namespace),
		metric.WithDescription("Number of keys in the secret document"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create document keys gauge: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		keysGauge:        keysGauge,
		storeDriver:      attribute.String("store_driver", storeDriver),
	}, nil
}

// RecordOperation increments the operation counter.
func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1, metric.WithAttributes(b.attributes(domain, operation, status)...))
}

// RecordDuration records the operation duration in seconds.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(), metric.WithAttributes(b.attributes(domain, operation, status)...))
}

// RecordDocumentKeys sets the document size gauge.
func (b *businessMetrics) RecordDocumentKeys(ctx context.Context, keys int) {
	b.keysGauge.Record(ctx, int64(keys), metric.WithAttributes(b.storeDriver))
}

func (b *businessMetrics) attributes(domain, operation, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
		b.storeDriver,
	}
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// RecordDocumentKeys does nothing.
func (n *NoOpBusinessMetrics) RecordDocumentKeys(ctx context.Context, keys int) {}
