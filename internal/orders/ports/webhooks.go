package ports

import (
	"context"
	"time"
)

// DeliveryStatus tracks one webhook notification through processing.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySucceeded DeliveryStatus = "succeeded"
	DeliveryFailed    DeliveryStatus = "failed"
)

// WebhookDelivery is one asynchronous notification from the payment gateway.
type WebhookDelivery struct {
	ID        string
	PaymentID string
	Status    DeliveryStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeliveryStats summarizes the delivery log for operational visibility.
type DeliveryStats struct {
	Pending   int `json:"pending"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// WebhookDeliveryLog records gateway deliveries and their outcomes so
// failed ones can be retried without waiting for gateway redelivery.
type WebhookDeliveryLog interface {
	Record(ctx context.Context, delivery WebhookDelivery) error
	MarkSucceeded(ctx context.Context, id string) error
	// MarkFailed increments the attempt counter and stores the failure reason.
	MarkFailed(ctx context.Context, id string, reason string) error
	// ListFailed returns failed deliveries still under the attempt bound,
	// oldest first, at most limit of them.
	ListFailed(ctx context.Context, limit, maxAttempts int) ([]WebhookDelivery, error)
	Stats(ctx context.Context) (DeliveryStats, error)
}
