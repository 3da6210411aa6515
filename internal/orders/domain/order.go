package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// KnownStatus reports whether s is one of the statuses the lifecycle defines.
func KnownStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// DisplayStatus maps a persisted status to the label shown to customers.
// "confirmed" is presented as "processing"; everything else is shown as-is.
func DisplayStatus(s OrderStatus) string {
	if s == StatusConfirmed {
		return string(StatusProcessing)
	}
	return string(s)
}

// Order represents a placed order with its customer contact snapshot.
// TotalCents is fixed at creation (items subtotal + shipping - discount)
// and never recomputed afterwards.
type Order struct {
	ID            string      `json:"id"`
	Number        string      `json:"number"`
	Status        OrderStatus `json:"status"`
	TotalCents    int64       `json:"total_cents"`
	ShippingCents int64       `json:"shipping_cents"`
	DiscountCents int64       `json:"discount_cents"`
	TrackingCode  string      `json:"tracking_code,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	PreferenceID  string      `json:"preference_id,omitempty"`
	PaymentRef    string      `json:"payment_ref,omitempty"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Item is one product-quantity-price line within an order. UnitPriceCents
// is a snapshot taken at order time, independent of later price changes.
type Item struct {
	OrderID        string `json:"order_id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.CustomerName) == "" {
		return errors.New("customer_name is required")
	}
	if strings.TrimSpace(o.CustomerEmail) == "" {
		return errors.New("customer_email is required")
	}
	if !strings.Contains(o.CustomerEmail, "@") {
		return errors.New("customer_email must be valid")
	}
	if o.TotalCents <= 0 {
		return errors.New("total_cents must be positive")
	}
	if o.ShippingCents < 0 {
		return errors.New("shipping_cents must not be negative")
	}
	if o.DiscountCents < 0 {
		return errors.New("discount_cents must not be negative")
	}
	return nil
}

// Deletable reports whether the order may still be removed. Orders that
// progressed past pending (other than into cancellation) must be kept.
func (o Order) Deletable() bool {
	return o.Status == StatusPending || o.Status == StatusCancelled
}

// ValidateTransition checks the target status and its tracking requirement.
// It does not restrict which statuses are reachable from which: the back
// office may move an order freely, and the webhook path maps gateway
// statuses before calling in.
func ValidateTransition(target OrderStatus, trackingCode string) error {
	if !KnownStatus(target) {
		return fmt.Errorf("unknown order status %q", target)
	}
	if target == StatusShipped && strings.TrimSpace(trackingCode) == "" {
		return errors.New("tracking_code is required when status is shipped")
	}
	return nil
}

// Validate checks a line item snapshot.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ProductID) == "" {
		return errors.New("product_id is required")
	}
	if i.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if i.UnitPriceCents < 0 {
		return errors.New("unit_price_cents must not be negative")
	}
	return nil
}

// Subtotal returns the items' combined price in cents.
func Subtotal(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += int64(it.Quantity) * it.UnitPriceCents
	}
	return sum
}
