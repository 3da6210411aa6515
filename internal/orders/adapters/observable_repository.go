package adapters

import (
	"context"
	"time"

	"github.com/partsdepot/backoffice/internal/database"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
	"github.com/partsdepot/backoffice/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order, items []domain.Item) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.Int("order.items", len(items)),
		attribute.String("operation", "create"),
	)

	start := time.Now()
	err := r.repo.Create(ctx, order, items)
	r.metrics.RecordQuery(ctx, "create_order", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.observedGet(ctx, "OrderRepository.GetByID", "get_order_by_id", func(ctx context.Context) (*domain.Order, error) {
		return r.repo.GetByID(ctx, id)
	})
}

func (r *ObservableRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.observedGet(ctx, "OrderRepository.GetByNumber", "get_order_by_number", func(ctx context.Context) (*domain.Order, error) {
		return r.repo.GetByNumber(ctx, number)
	})
}

func (r *ObservableRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Order, error) {
	return r.observedGet(ctx, "OrderRepository.GetByPaymentRef", "get_order_by_payment_ref", func(ctx context.Context) (*domain.Order, error) {
		return r.repo.GetByPaymentRef(ctx, paymentRef)
	})
}

func (r *ObservableRepository) GetItems(ctx context.Context, orderID string) ([]domain.Item, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetItems")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("operation", "get_order_items"),
	)

	start := time.Now()
	items, err := r.repo.GetItems(ctx, orderID)
	r.metrics.RecordQuery(ctx, "get_order_items", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return items, nil
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("operation", "list"),
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	orders, err := r.repo.List(ctx, filter)
	r.metrics.RecordQuery(ctx, "list_orders", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingCode string) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("order.new_status", string(status)),
		attribute.String("operation", "update_status"),
	)

	start := time.Now()
	err := r.repo.UpdateStatus(ctx, id, status, trackingCode)
	r.metrics.RecordQuery(ctx, "update_order_status", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) SetPaymentRef(ctx context.Context, id string, preferenceID, paymentRef string) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.SetPaymentRef")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "set_payment_ref"),
	)

	start := time.Now()
	err := r.repo.SetPaymentRef(ctx, id, preferenceID, paymentRef)
	r.metrics.RecordQuery(ctx, "set_order_payment_ref", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Delete")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "delete"),
	)

	start := time.Now()
	err := r.repo.Delete(ctx, id)
	r.metrics.RecordQuery(ctx, "delete_order", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) observedGet(ctx context.Context, spanName, queryName string, fn func(ctx context.Context) (*domain.Order, error)) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("operation", queryName))

	start := time.Now()
	order, err := fn(ctx)
	r.metrics.RecordQuery(ctx, queryName, time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}
