package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu         sync.RWMutex
	orders     map[string]domain.Order
	items      map[string][]domain.Item
	nextNumber int
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		orders: make(map[string]domain.Order),
		items:  make(map[string][]domain.Item),
	}
}

// Create stores a new order with its line items and assigns the next
// sequential order number.
func (r *Repository) Create(_ context.Context, order domain.Order, items []domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextNumber++
	order.Number = fmt.Sprintf("ORD-%06d", r.nextNumber)
	r.orders[order.ID] = order

	snapshot := make([]domain.Item, len(items))
	copy(snapshot, items)
	r.items[order.ID] = snapshot

	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if uuid.Validate(id) != nil {
		return nil, ports.ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := order
	return &copy, nil
}

// GetByNumber fetches a single order by its human-readable number.
func (r *Repository) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.Number == number {
			copy := order
			return &copy, nil
		}
	}
	return nil, ports.ErrNotFound
}

// GetByPaymentRef fetches the order linked to a gateway payment reference.
func (r *Repository) GetByPaymentRef(_ context.Context, paymentRef string) (*domain.Order, error) {
	if paymentRef == "" {
		return nil, ports.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.PaymentRef == paymentRef {
			copy := order
			return &copy, nil
		}
	}
	return nil, ports.ErrNotFound
}

// GetItems returns the line-item snapshot of an order.
func (r *Repository) GetItems(_ context.Context, orderID string) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, ok := r.items[orderID]
	if !ok {
		if _, exists := r.orders[orderID]; !exists {
			return nil, ports.ErrNotFound
		}
		return []domain.Item{}, nil
	}

	out := make([]domain.Item, len(items))
	copy(out, items)
	return out, nil
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Order{}, nil
	}

	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	slice := make([]domain.Order, end-start)
	copy(slice, result[start:end])

	return slice, nil
}

// UpdateStatus sets the status, optional tracking code and updatedAt.
func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus, trackingCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	order.Status = status
	if trackingCode != "" {
		order.TrackingCode = trackingCode
	}
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// SetPaymentRef stores the gateway references on the order.
func (r *Repository) SetPaymentRef(_ context.Context, id string, preferenceID, paymentRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	if preferenceID != "" {
		order.PreferenceID = preferenceID
	}
	if paymentRef != "" {
		order.PaymentRef = paymentRef
	}
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// Delete removes an order while it is still pending or cancelled.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if !order.Deletable() {
		return ports.ErrNotDeletable
	}

	delete(r.orders, id)
	delete(r.items, id)
	return nil
}
