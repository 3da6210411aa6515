package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

type ItemInput struct {
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPriceCents int64
}

type CreateOrderCommand struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PaymentMethod string
	ShippingCents int64
	CouponCode    string
	Items         []ItemInput
}

func (c CreateOrderCommand) Validate() error {
	if strings.TrimSpace(c.CustomerName) == "" {
		return errors.New("customer_name is required")
	}
	if strings.TrimSpace(c.CustomerEmail) == "" {
		return errors.New("customer_email is required")
	}
	if !strings.Contains(c.CustomerEmail, "@") {
		return errors.New("customer_email must be valid")
	}
	if c.ShippingCents < 0 {
		return errors.New("shipping_cents must not be negative")
	}
	if len(c.Items) == 0 {
		return errors.New("at least one item is required")
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return fmt.Errorf("items[%d]: product_id is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("items[%d]: quantity must be positive", i)
		}
		if item.UnitPriceCents < 0 {
			return fmt.Errorf("items[%d]: unit_price_cents must not be negative", i)
		}
	}
	return nil
}

// CreateOrderResult is a created pending order plus the gateway URL the
// customer is redirected to for payment.
type CreateOrderResult struct {
	Order       *domain.Order
	Items       []domain.Item
	RedirectURL string
}

type CreateHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error)
}

// CreateOrderHandler persists a pending order with its line-item snapshot
// and registers a payment preference for it at the gateway.
type CreateOrderHandler struct {
	repo    ports.OrderRepository
	coupons ports.CouponRepository
	gateway ports.PaymentGateway
	events  ports.EventBus
	now     func() time.Time
}

func NewCreateOrderHandler(
	repo ports.OrderRepository,
	coupons ports.CouponRepository,
	gateway ports.PaymentGateway,
	events ports.EventBus,
) *CreateOrderHandler {
	return &CreateOrderHandler{
		repo:    repo,
		coupons: coupons,
		gateway: gateway,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	items := make([]domain.Item, 0, len(cmd.Items))
	for _, in := range cmd.Items {
		items = append(items, domain.Item{
			OrderID:        orderID,
			ProductID:      in.ProductID,
			ProductName:    in.ProductName,
			Quantity:       in.Quantity,
			UnitPriceCents: in.UnitPriceCents,
		})
	}

	subtotal := domain.Subtotal(items)

	var discount int64
	if code := strings.TrimSpace(cmd.CouponCode); code != "" {
		coupon, err := h.coupons.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil, fmt.Errorf("coupon %q does not exist", code)
			}
			return nil, err
		}
		if !coupon.Usable(h.now()) {
			return nil, fmt.Errorf("coupon %q has expired", code)
		}
		discount = coupon.DiscountFor(subtotal)
	}

	now := h.now()
	order := domain.Order{
		ID:            orderID,
		Status:        domain.StatusPending,
		TotalCents:    subtotal + cmd.ShippingCents - discount,
		ShippingCents: cmd.ShippingCents,
		DiscountCents: discount,
		PaymentMethod: cmd.PaymentMethod,
		CustomerName:  cmd.CustomerName,
		CustomerEmail: cmd.CustomerEmail,
		CustomerPhone: cmd.CustomerPhone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	// The repository assigns the sequential order number.
	if err := h.repo.Create(ctx, order, items); err != nil {
		return nil, err
	}

	created, err := h.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload created order: %w", err)
	}

	pref, err := h.gateway.CreatePreference(ctx, *created, items)
	if err != nil {
		return &CreateOrderResult{Order: created, Items: items},
			fmt.Errorf("order saved but payment preference failed: %w", err)
	}

	if err := h.repo.SetPaymentRef(ctx, created.ID, pref.ID, ""); err != nil {
		return &CreateOrderResult{Order: created, Items: items},
			fmt.Errorf("order saved but preference reference not stored: %w", err)
	}
	created.PreferenceID = pref.ID

	if err := h.events.PublishOrderCreated(ctx, *created); err != nil {
		return &CreateOrderResult{Order: created, Items: items, RedirectURL: pref.RedirectURL},
			fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &CreateOrderResult{Order: created, Items: items, RedirectURL: pref.RedirectURL}, nil
}
