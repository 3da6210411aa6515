package domain

import (
	"errors"
	"time"
)

// DefaultCouponTTL is applied when a coupon is issued without an explicit expiry.
const DefaultCouponTTL = 30 * 24 * time.Hour

// Coupon is a single-user discount voucher issued by an admin.
type Coupon struct {
	Code            string    `json:"code"`
	UserID          string    `json:"user_id"`
	DiscountPercent int       `json:"discount_percent"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks the coupon's constraints.
func (c Coupon) Validate() error {
	if c.Code == "" {
		return errors.New("code is required")
	}
	if c.UserID == "" {
		return errors.New("user_id is required")
	}
	if c.DiscountPercent < 1 || c.DiscountPercent > 100 {
		return errors.New("discount_percent must be between 1 and 100")
	}
	return nil
}

// Usable reports whether the coupon can still be redeemed at the given time.
func (c Coupon) Usable(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// DiscountFor returns the discount in cents this coupon grants on a subtotal.
func (c Coupon) DiscountFor(subtotalCents int64) int64 {
	return subtotalCents * int64(c.DiscountPercent) / 100
}
