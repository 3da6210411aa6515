package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

type CouponRepository struct {
	pool *pgxpool.Pool
}

func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func (r *CouponRepository) Create(ctx context.Context, coupon domain.Coupon) error {
	query := `
		INSERT INTO coupons (code, user_id, discount_percent, expires_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.Code,
		coupon.UserID,
		coupon.DiscountPercent,
		coupon.ExpiresAt,
		coupon.CreatedBy,
		coupon.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}

	return nil
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
		SELECT code, user_id, discount_percent, expires_at, created_by, created_at
		FROM coupons
		WHERE code = $1
	`

	var coupon domain.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&coupon.Code,
		&coupon.UserID,
		&coupon.DiscountPercent,
		&coupon.ExpiresAt,
		&coupon.CreatedBy,
		&coupon.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select coupon: %w", err)
	}

	return &coupon, nil
}
