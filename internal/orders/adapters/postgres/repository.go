package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

const orderColumns = `
	id, number, status, total_cents, shipping_cents, discount_cents,
	COALESCE(tracking_code, ''), payment_method,
	COALESCE(preference_id, ''), COALESCE(payment_ref, ''),
	customer_name, customer_email, customer_phone, created_at, updated_at
`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, order domain.Order, items []domain.Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO orders (
			id, status, total_cents, shipping_cents, discount_cents,
			payment_method, customer_name, customer_email, customer_phone,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = tx.Exec(ctx, query,
		order.ID,
		order.Status,
		order.TotalCents,
		order.ShippingCents,
		order.DiscountCents,
		order.PaymentMethod,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range items {
		if _, err := tx.Exec(ctx, itemQuery,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPriceCents,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if uuid.Validate(id) != nil {
		return nil, ports.ErrInvalidID
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return r.getOne(ctx, query, id)
}

func (r *Repository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE number = $1`, orderColumns)
	return r.getOne(ctx, query, number)
}

func (r *Repository) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE payment_ref = $1`, orderColumns)
	return r.getOne(ctx, query, paymentRef)
}

func (r *Repository) GetItems(ctx context.Context, orderID string) ([]domain.Item, error) {
	query := `
		SELECT order_id, product_id, product_name, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPriceCents,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, orderColumns)

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingCode string) error {
	query := `
		UPDATE orders
		SET status = $1,
		    tracking_code = COALESCE(NULLIF($2, ''), tracking_code),
		    updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, status, trackingCode, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) SetPaymentRef(ctx context.Context, id string, preferenceID, paymentRef string) error {
	query := `
		UPDATE orders
		SET preference_id = COALESCE(NULLIF($1, ''), preference_id),
		    payment_ref = COALESCE(NULLIF($2, ''), payment_ref),
		    updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, preferenceID, paymentRef, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set order payment ref: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	// The status guard runs in the same statement so a racing transition
	// cannot slip a fulfilled order past the check.
	query := `
		DELETE FROM orders
		WHERE id = $1 AND status IN ($2, $3)
	`

	result, err := r.pool.Exec(ctx, query, id, domain.StatusPending, domain.StatusCancelled)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check order existence: %w", err)
	}
	if !exists {
		return ports.ErrNotFound
	}
	return ports.ErrNotDeletable
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.Status,
		&order.TotalCents,
		&order.ShippingCents,
		&order.DiscountCents,
		&order.TrackingCode,
		&order.PaymentMethod,
		&order.PreferenceID,
		&order.PaymentRef,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &order, nil
}
