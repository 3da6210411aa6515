package ports

import (
	"context"

	"github.com/partsdepot/backoffice/internal/orders/domain"
)

// EventBus publishes order lifecycle events for downstream consumers
// (marketplace synchronization feeds off these).
type EventBus interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, order domain.Order, previous domain.OrderStatus) error
}
