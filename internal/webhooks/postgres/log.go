package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// DeliveryLog persists webhook deliveries and their processing outcomes.
type DeliveryLog struct {
	pool *pgxpool.Pool
}

func NewDeliveryLog(pool *pgxpool.Pool) *DeliveryLog {
	return &DeliveryLog{pool: pool}
}

func (l *DeliveryLog) Record(ctx context.Context, delivery ports.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (id, payment_id, status, attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := l.pool.Exec(ctx, query,
		delivery.ID,
		delivery.PaymentID,
		delivery.Status,
		delivery.Attempts,
		delivery.LastError,
		delivery.CreatedAt,
		delivery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook delivery: %w", err)
	}

	return nil
}

func (l *DeliveryLog) MarkSucceeded(ctx context.Context, id string) error {
	query := `
		UPDATE webhook_deliveries
		SET status = $1, last_error = '', updated_at = $2
		WHERE id = $3
	`

	result, err := l.pool.Exec(ctx, query, ports.DeliverySucceeded, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark webhook delivery succeeded: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (l *DeliveryLog) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE webhook_deliveries
		SET status = $1, attempts = attempts + 1, last_error = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := l.pool.Exec(ctx, query, ports.DeliveryFailed, reason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark webhook delivery failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (l *DeliveryLog) ListFailed(ctx context.Context, limit, maxAttempts int) ([]ports.WebhookDelivery, error) {
	query := `
		SELECT id, payment_id, status, attempts, last_error, created_at, updated_at
		FROM webhook_deliveries
		WHERE status = $1 AND attempts < $2
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := l.pool.Query(ctx, query, ports.DeliveryFailed, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed webhook deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []ports.WebhookDelivery
	for rows.Next() {
		var d ports.WebhookDelivery
		if err := rows.Scan(
			&d.ID,
			&d.PaymentID,
			&d.Status,
			&d.Attempts,
			&d.LastError,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan webhook delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook deliveries: %w", err)
	}

	return deliveries, nil
}

func (l *DeliveryLog) Stats(ctx context.Context) (ports.DeliveryStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM webhook_deliveries
	`

	var stats ports.DeliveryStats
	err := l.pool.QueryRow(ctx, query,
		ports.DeliveryPending,
		ports.DeliverySucceeded,
		ports.DeliveryFailed,
	).Scan(&stats.Pending, &stats.Succeeded, &stats.Failed)
	if err != nil {
		return ports.DeliveryStats{}, fmt.Errorf("count webhook deliveries: %w", err)
	}

	return stats, nil
}
