package webhooks

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	sweepDuration metric.Float64Histogram
	retryTotal    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.sweepDuration, err = meter.Float64Histogram(
		"webhook_retry_sweep_duration_seconds",
		metric.WithDescription("Duration of webhook retry sweeps"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create webhook_retry_sweep_duration histogram: %w", err)
	}

	m.retryTotal, err = meter.Int64Counter(
		"webhook_retries_total",
		metric.WithDescription("Webhook delivery retry attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create webhook_retries_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordSweep(ctx context.Context, attempted, recovered int, durationSeconds float64) {
	m.sweepDuration.Record(ctx, durationSeconds)
	m.retryTotal.Add(ctx, int64(recovered), metric.WithAttributes(
		attribute.String("outcome", "recovered"),
	))
	m.retryTotal.Add(ctx, int64(attempted-recovered), metric.WithAttributes(
		attribute.String("outcome", "failed"),
	))
}
