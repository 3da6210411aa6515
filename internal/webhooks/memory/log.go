package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// DeliveryLog keeps webhook deliveries in memory.
type DeliveryLog struct {
	mu         sync.Mutex
	deliveries map[string]ports.WebhookDelivery
}

func NewDeliveryLog() *DeliveryLog {
	return &DeliveryLog{deliveries: make(map[string]ports.WebhookDelivery)}
}

func (l *DeliveryLog) Record(_ context.Context, delivery ports.WebhookDelivery) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deliveries[delivery.ID] = delivery
	return nil
}

func (l *DeliveryLog) MarkSucceeded(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, ok := l.deliveries[id]
	if !ok {
		return ports.ErrNotFound
	}
	d.Status = ports.DeliverySucceeded
	d.LastError = ""
	d.UpdatedAt = time.Now().UTC()
	l.deliveries[id] = d
	return nil
}

func (l *DeliveryLog) MarkFailed(_ context.Context, id string, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, ok := l.deliveries[id]
	if !ok {
		return ports.ErrNotFound
	}
	d.Status = ports.DeliveryFailed
	d.Attempts++
	d.LastError = reason
	d.UpdatedAt = time.Now().UTC()
	l.deliveries[id] = d
	return nil
}

func (l *DeliveryLog) ListFailed(_ context.Context, limit, maxAttempts int) ([]ports.WebhookDelivery, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []ports.WebhookDelivery
	for _, d := range l.deliveries {
		if d.Status == ports.DeliveryFailed && d.Attempts < maxAttempts {
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *DeliveryLog) Stats(_ context.Context) (ports.DeliveryStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var stats ports.DeliveryStats
	for _, d := range l.deliveries {
		switch d.Status {
		case ports.DeliveryPending:
			stats.Pending++
		case ports.DeliverySucceeded:
			stats.Succeeded++
		case ports.DeliveryFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// Get returns a delivery by id, for tests.
func (l *DeliveryLog) Get(id string) (ports.WebhookDelivery, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.deliveries[id]
	return d, ok
}
