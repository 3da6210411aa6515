package notify

import (
	"context"
	"log/slog"

	"github.com/partsdepot/backoffice/internal/orders/domain"
)

// NoopNotifier logs status updates without sending mail. Useful for local
// dev before wiring SMTP.
type NoopNotifier struct{}

// NewNoopNotifier returns a new no-op notifier.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) SendOrderStatusUpdate(_ context.Context, order domain.Order, _ []domain.Item, displayStatus string, previous domain.OrderStatus) error {
	slog.Debug("notify::order_status_update",
		"order_number", order.Number,
		"email", order.CustomerEmail,
		"display_status", displayStatus,
		"previous_status", previous,
	)
	return nil
}
