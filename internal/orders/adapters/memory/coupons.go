package memory

import (
	"context"
	"sync"

	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// CouponRepository keeps issued coupons in memory.
type CouponRepository struct {
	mu      sync.RWMutex
	coupons map[string]domain.Coupon
}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{coupons: make(map[string]domain.Coupon)}
}

func (r *CouponRepository) Create(_ context.Context, coupon domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coupons[coupon.Code] = coupon
	return nil
}

func (r *CouponRepository) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	coupon, ok := r.coupons[code]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := coupon
	return &copy, nil
}
