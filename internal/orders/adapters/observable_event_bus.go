package adapters

import (
	"context"
	"time"

	"github.com/partsdepot/backoffice/internal/kafka"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
	"github.com/partsdepot/backoffice/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderCreated")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("event.type", "order.created"),
	)

	start := time.Now()
	err := e.bus.PublishOrderCreated(ctx, order)
	e.metrics.RecordPublish(ctx, "order.created", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishOrderStatusChanged(ctx context.Context, order domain.Order, previous domain.OrderStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderStatusChanged")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("event.type", "order.status_changed"),
		attribute.String("order.status", string(order.Status)),
		attribute.String("order.previous_status", string(previous)),
	)

	start := time.Now()
	err := e.bus.PublishOrderStatusChanged(ctx, order, previous)
	e.metrics.RecordPublish(ctx, "order.status_changed", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
