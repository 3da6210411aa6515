package ports

import (
	"context"

	"github.com/partsdepot/backoffice/internal/orders/domain"
)

// Notifier sends transactional customer email. Callers treat every send
// as fire-and-forget: failures are logged, never propagated upstream.
type Notifier interface {
	SendOrderStatusUpdate(ctx context.Context, order domain.Order, items []domain.Item, displayStatus string, previous domain.OrderStatus) error
}
