package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// Ledger adjusts per-product stock counters and keeps an audit trail of
// every movement. The counter update and the audit row commit together.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Adjust(ctx context.Context, productID string, delta int, reason, actorID string) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin stock adjustment: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The non-negative guard lives in the same statement as the update so
	// concurrent decrements settle on the row lock, not in application code.
	result, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = $2
		WHERE id = $3 AND stock + $1 >= 0
	`, delta, time.Now().UTC(), productID)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("product %s does not exist", productID)
		}
		return fmt.Errorf("product %s: %w", productID, ports.ErrInsufficientStock)
	}

	var actor *string
	if actorID != "" {
		actor = &actorID
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (product_id, delta, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, productID, delta, reason, actor, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit stock adjustment: %w", err)
	}

	return nil
}
