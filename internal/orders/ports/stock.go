package ports

import (
	"context"
	"errors"
)

// StockLedger applies signed stock adjustments with an audit trail.
type StockLedger interface {
	// Adjust adds delta to the product's stock counter and records a
	// movement row carrying the reason and acting user (empty for system).
	Adjust(ctx context.Context, productID string, delta int, reason, actorID string) error
}

// ErrInsufficientStock is returned when a decrement would drive a
// product's stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")
