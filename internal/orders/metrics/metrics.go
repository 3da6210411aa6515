package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	transitionsTotal        metric.Int64Counter
	transitionDuration      metric.Float64Histogram
	sideEffectFailuresTotal metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.transitionsTotal, err = meter.Int64Counter(
		"order_transitions_total",
		metric.WithDescription("Total number of order status transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_transitions_total counter: %w", err)
	}

	m.transitionDuration, err = meter.Float64Histogram(
		"order_transition_duration_seconds",
		metric.WithDescription("Duration of order status transitions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_transition_duration histogram: %w", err)
	}

	m.sideEffectFailuresTotal, err = meter.Int64Counter(
		"order_side_effect_failures_total",
		metric.WithDescription("Best-effort side effects that failed after a committed transition"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_side_effect_failures_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordTransition(ctx context.Context, target string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.transitionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("target", target),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordTransitionDuration(ctx context.Context, durationSeconds float64) {
	m.transitionDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordSideEffectFailure(ctx context.Context, kind string) {
	m.sideEffectFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}
