package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/app/commands"
	"github.com/partsdepot/backoffice/internal/orders/app/queries"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/metrics"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// Service bundles use cases for handling orders via the API.
type Service struct {
	repo              ports.OrderRepository
	coupons           ports.CouponRepository
	createHandler     commands.CreateHandler
	transitionHandler commands.TransitionHandler
	getOrderHandler   *queries.GetOrderQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	coupons ports.CouponRepository,
	stock ports.StockLedger,
	gateway ports.PaymentGateway,
	notifier ports.Notifier,
	events ports.EventBus,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	transition := commands.NewTransitionOrderHandler(repo, stock, notifier, events)
	observable := commands.NewObservableTransitionHandler(transition, logger, metrics)

	return &Service{
		repo:              repo,
		coupons:           coupons,
		createHandler:     commands.NewCreateOrderHandler(repo, coupons, gateway, events),
		transitionHandler: observable,
		getOrderHandler:   queries.NewGetOrderQueryHandler(repo),
	}
}

// CreateOrderInput captures the checkout payload.
type CreateOrderInput struct {
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	CustomerPhone string           `json:"customer_phone"`
	PaymentMethod string           `json:"payment_method"`
	ShippingCents int64            `json:"shipping_cents"`
	CouponCode    string           `json:"coupon_code"`
	Items         []OrderItemInput `json:"items"`
}

type OrderItemInput struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// CreateOrder orchestrates order creation and payment-preference registration.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*commands.CreateOrderResult, error) {
	cmd := commands.CreateOrderCommand{
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		PaymentMethod: input.PaymentMethod,
		ShippingCents: input.ShippingCents,
		CouponCode:    input.CouponCode,
	}
	for _, item := range input.Items {
		cmd.Items = append(cmd.Items, commands.ItemInput{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return s.createHandler.Handle(ctx, cmd)
}

// TransitionOrder moves an order to a target status with the full
// side-effect contract. Used by the admin API and the webhook processor.
func (s *Service) TransitionOrder(ctx context.Context, ref string, target domain.OrderStatus, trackingCode, actorID string) (*commands.TransitionResult, error) {
	return s.transitionHandler.Handle(ctx, commands.TransitionOrderCommand{
		OrderRef:     ref,
		Target:       target,
		TrackingCode: trackingCode,
		ActorID:      actorID,
	})
}

// GetOrder retrieves an order by id or order number, with items.
func (s *Service) GetOrder(ctx context.Context, ref string) (*queries.OrderWithItems, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderRef: ref})
}

// GetOrderByPaymentRef resolves an order from its gateway payment reference.
func (s *Service) GetOrderByPaymentRef(ctx context.Context, paymentRef string) (*domain.Order, error) {
	return s.repo.GetByPaymentRef(ctx, paymentRef)
}

// GetOrderByNumber resolves an order from its human-readable number.
func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.repo.GetByNumber(ctx, number)
}

// LinkPaymentRef stores the gateway payment id on the order.
func (s *Service) LinkPaymentRef(ctx context.Context, orderID, preferenceID, paymentRef string) error {
	return s.repo.SetPaymentRef(ctx, orderID, preferenceID, paymentRef)
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, filter)
}

// DeleteOrder removes an order, rejected unless the order is still
// pending or already cancelled.
func (s *Service) DeleteOrder(ctx context.Context, ref string) error {
	order, err := commands.ResolveOrder(ctx, s.repo, ref)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, order.ID)
}

// IssueCoupon creates a discount coupon for one user. A zero expiry
// defaults to thirty days out.
func (s *Service) IssueCoupon(ctx context.Context, userID, createdBy string, discountPercent int, expiresAt time.Time) (*domain.Coupon, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user_id is required")
	}

	code, err := generateCouponCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if expiresAt.IsZero() {
		expiresAt = now.Add(domain.DefaultCouponTTL)
	}

	coupon := domain.Coupon{
		Code:            code,
		UserID:          userID,
		DiscountPercent: discountPercent,
		ExpiresAt:       expiresAt,
		CreatedBy:       createdBy,
		CreatedAt:       now,
	}

	if err := coupon.Validate(); err != nil {
		return nil, err
	}

	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, err
	}

	return &coupon, nil
}

func generateCouponCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate coupon code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
