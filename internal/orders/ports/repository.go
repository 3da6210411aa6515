package ports

import (
	"context"
	"errors"

	"github.com/partsdepot/backoffice/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order, items []domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Order, error)
	GetItems(ctx context.Context, orderID string) ([]domain.Item, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingCode string) error
	SetPaymentRef(ctx context.Context, id string, preferenceID, paymentRef string) error
	Delete(ctx context.Context, id string) error
}

// CouponRepository persists issued coupons and resolves them at checkout.
type CouponRepository interface {
	Create(ctx context.Context, coupon domain.Coupon) error
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

// ListFilter narrows list queries by status and pagination.
type ListFilter struct {
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidID is returned when an identifier is not a well-formed UUID.
	// Callers fall back to order-number lookup on this error and no other.
	ErrInvalidID = errors.New("malformed order id")

	// ErrNotDeletable is returned when deletion is attempted on an order
	// that has progressed past the deletable statuses.
	ErrNotDeletable = errors.New("order can no longer be deleted")
)
