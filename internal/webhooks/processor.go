package webhooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/partsdepot/backoffice/internal/orders/app/commands"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// OrderService is the slice of the order application service the webhook
// pipeline needs.
type OrderService interface {
	TransitionOrder(ctx context.Context, ref string, target domain.OrderStatus, trackingCode, actorID string) (*commands.TransitionResult, error)
	GetOrderByPaymentRef(ctx context.Context, paymentRef string) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	LinkPaymentRef(ctx context.Context, orderID, preferenceID, paymentRef string) error
}

// Processor turns one gateway delivery into an order transition: look up
// the payment's current status at the gateway, map it, resolve the order
// and run the shared transition contract. Reprocessing an already-applied
// delivery is a no-op because of the previous-status guards downstream.
type Processor struct {
	gateway ports.PaymentGateway
	orders  OrderService
	log     ports.WebhookDeliveryLog
	logger  *slog.Logger
}

func NewProcessor(gateway ports.PaymentGateway, orders OrderService, log ports.WebhookDeliveryLog, logger *slog.Logger) *Processor {
	return &Processor{
		gateway: gateway,
		orders:  orders,
		log:     log,
		logger:  logger,
	}
}

// Receive records a fresh delivery and attempts to process it. The
// delivery stays in the log as failed when processing does not go
// through, so the retry sweep picks it up later.
func (p *Processor) Receive(ctx context.Context, paymentID string) error {
	now := time.Now().UTC()
	delivery := ports.WebhookDelivery{
		ID:        uuid.NewString(),
		PaymentID: paymentID,
		Status:    ports.DeliveryPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.log.Record(ctx, delivery); err != nil {
		return fmt.Errorf("record webhook delivery: %w", err)
	}

	return p.Attempt(ctx, delivery)
}

// Attempt processes one recorded delivery and marks its outcome.
func (p *Processor) Attempt(ctx context.Context, delivery ports.WebhookDelivery) error {
	if err := p.process(ctx, delivery.PaymentID); err != nil {
		p.logger.ErrorContext(ctx, "webhook delivery failed",
			"error", err,
			"delivery_id", delivery.ID,
			"payment_id", delivery.PaymentID,
			"attempt", delivery.Attempts+1,
		)
		if markErr := p.log.MarkFailed(ctx, delivery.ID, err.Error()); markErr != nil {
			p.logger.ErrorContext(ctx, "failed to mark webhook delivery failed",
				"error", markErr, "delivery_id", delivery.ID)
		}
		return err
	}

	if err := p.log.MarkSucceeded(ctx, delivery.ID); err != nil {
		p.logger.ErrorContext(ctx, "failed to mark webhook delivery succeeded",
			"error", err, "delivery_id", delivery.ID)
	}
	return nil
}

func (p *Processor) process(ctx context.Context, paymentID string) error {
	lookup, err := p.gateway.GetPaymentStatus(ctx, paymentID)
	if err != nil {
		return err
	}

	if lookup.Status == ports.PaymentUnknown {
		return fmt.Errorf("gateway reported unrecognized status for payment %s (detail %q)", paymentID, lookup.StatusDetail)
	}

	target, ok := lookup.Status.OrderStatusFor()
	if !ok {
		// Payment still in flight; nothing to transition yet.
		p.logger.InfoContext(ctx, "payment not settled yet, delivery acknowledged",
			"payment_id", paymentID, "payment_status", lookup.Status)
		return nil
	}

	order, err := p.resolveOrder(ctx, paymentID, lookup.ExternalReference)
	if err != nil {
		return err
	}

	result, err := p.orders.TransitionOrder(ctx, order.ID, target, "", "")
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "webhook applied payment status",
		"payment_id", paymentID,
		"payment_status", lookup.Status,
		"status_detail", lookup.StatusDetail,
		"order_id", result.Order.ID,
		"order_number", result.Order.Number,
		"from", result.Previous,
		"to", result.Order.Status,
	)
	return nil
}

// resolveOrder finds the order for a payment: by the stored payment
// reference first, then by the external reference (the order number
// attached at preference creation), linking the payment id on success.
func (p *Processor) resolveOrder(ctx context.Context, paymentID, externalRef string) (*domain.Order, error) {
	order, err := p.orders.GetOrderByPaymentRef(ctx, paymentID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	if externalRef == "" {
		return nil, fmt.Errorf("no order linked to payment %s", paymentID)
	}

	order, err = p.orders.GetOrderByNumber(ctx, externalRef)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("no order matches payment %s (external reference %q)", paymentID, externalRef)
		}
		return nil, err
	}

	if err := p.orders.LinkPaymentRef(ctx, order.ID, "", paymentID); err != nil {
		// Resolution via external reference still works next time.
		p.logger.WarnContext(ctx, "could not link payment reference to order",
			"error", err, "order_id", order.ID, "payment_id", paymentID)
	}

	return order, nil
}
