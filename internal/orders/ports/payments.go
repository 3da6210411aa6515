package ports

import (
	"context"
	"errors"

	"github.com/partsdepot/backoffice/internal/orders/domain"
)

// PaymentStatus is the finite set of payment states the gateway reports.
// Anything the gateway sends outside this set parses to PaymentUnknown.
type PaymentStatus string

const (
	PaymentApproved  PaymentStatus = "approved"
	PaymentPending   PaymentStatus = "pending"
	PaymentInProcess PaymentStatus = "in_process"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentUnknown   PaymentStatus = "unknown"
)

// ParsePaymentStatus maps a raw gateway status string to the known set.
func ParsePaymentStatus(raw string) PaymentStatus {
	switch PaymentStatus(raw) {
	case PaymentApproved, PaymentPending, PaymentInProcess, PaymentRejected, PaymentCancelled, PaymentRefunded:
		return PaymentStatus(raw)
	default:
		return PaymentUnknown
	}
}

// OrderStatusFor maps a payment status to the order status it should
// drive. The second return is false when no transition applies (the
// payment is still in flight, or the status is unknown).
func (s PaymentStatus) OrderStatusFor() (domain.OrderStatus, bool) {
	switch s {
	case PaymentApproved:
		return domain.StatusConfirmed, true
	case PaymentRejected, PaymentCancelled, PaymentRefunded:
		return domain.StatusCancelled, true
	default:
		return "", false
	}
}

// PaymentLookup is the gateway's view of one payment. ExternalReference
// carries the order number this system attached when creating the
// preference; it is the fallback for resolving deliveries whose payment
// id has not been linked to an order yet.
type PaymentLookup struct {
	PaymentID         string
	Status            PaymentStatus
	StatusDetail      string
	ExternalReference string
}

// Preference is a created, payable checkout session at the gateway.
type Preference struct {
	ID          string
	RedirectURL string
}

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	// CreatePreference registers a payable session for the order and
	// returns the URL the customer is redirected to. Called exactly once
	// per order, at creation.
	CreatePreference(ctx context.Context, order domain.Order, items []domain.Item) (*Preference, error)

	// GetPaymentStatus returns the gateway's current view of a payment.
	GetPaymentStatus(ctx context.Context, paymentID string) (*PaymentLookup, error)
}

// ErrGatewayUnavailable marks transport-level gateway failures. It is
// never used for a payment the gateway reports as rejected.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")
