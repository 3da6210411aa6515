package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// Movement is one recorded stock adjustment.
type Movement struct {
	ProductID string
	Delta     int
	Reason    string
	ActorID   string
	At        time.Time
}

// Ledger keeps stock counters and movements in memory.
type Ledger struct {
	mu        sync.Mutex
	stock     map[string]int
	movements []Movement
}

func NewLedger() *Ledger {
	return &Ledger{stock: make(map[string]int)}
}

// SetStock seeds a product's counter.
func (l *Ledger) SetStock(productID string, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[productID] = quantity
}

// Stock returns a product's current counter.
func (l *Ledger) Stock(productID string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	qty, ok := l.stock[productID]
	return qty, ok
}

// Movements returns a copy of the audit trail.
func (l *Ledger) Movements() []Movement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Movement, len(l.movements))
	copy(out, l.movements)
	return out
}

func (l *Ledger) Adjust(_ context.Context, productID string, delta int, reason, actorID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.stock[productID]
	if !ok {
		return fmt.Errorf("product %s does not exist", productID)
	}
	if current+delta < 0 {
		return fmt.Errorf("product %s: %w", productID, ports.ErrInsufficientStock)
	}

	l.stock[productID] = current + delta
	l.movements = append(l.movements, Movement{
		ProductID: productID,
		Delta:     delta,
		Reason:    reason,
		ActorID:   actorID,
		At:        time.Now().UTC(),
	})
	return nil
}
