package kafka

import (
	"context"
	"log/slog"

	"github.com/partsdepot/backoffice/internal/orders/domain"
)

// NoopEventBus logs events without sending them to Kafka. Useful when no
// brokers are configured.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderCreated(_ context.Context, order domain.Order) error {
	slog.Debug("event::order_created", "order_id", order.ID, "order_number", order.Number)
	return nil
}

func (n *NoopEventBus) PublishOrderStatusChanged(_ context.Context, order domain.Order, previous domain.OrderStatus) error {
	slog.Debug("event::order_status_changed",
		"order_id", order.ID,
		"from", previous,
		"to", order.Status,
	)
	return nil
}
