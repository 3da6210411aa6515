package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// NoopGateway stands in when no gateway credentials are configured, so
// checkout still works in local development without reaching a real
// payment provider.
type NoopGateway struct{}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{}
}

func (g *NoopGateway) CreatePreference(ctx context.Context, order domain.Order, items []domain.Item) (*ports.Preference, error) {
	slog.DebugContext(ctx, "noop gateway: skipping preference creation", "order_number", order.Number)
	return &ports.Preference{ID: "noop-" + order.Number}, nil
}

func (g *NoopGateway) GetPaymentStatus(ctx context.Context, paymentID string) (*ports.PaymentLookup, error) {
	return nil, fmt.Errorf("noop gateway cannot look up payment %s: %w", paymentID, ports.ErrGatewayUnavailable)
}
