package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// GetOrderQuery retrieves an order by its id or order number.
type GetOrderQuery struct {
	OrderRef string
}

// Validate ensures the query has valid parameters.
func (q GetOrderQuery) Validate() error {
	if strings.TrimSpace(q.OrderRef) == "" {
		return errors.New("order reference is required")
	}
	return nil
}

// OrderWithItems bundles an order with its line-item snapshot.
type OrderWithItems struct {
	Order domain.Order  `json:"order"`
	Items []domain.Item `json:"items"`
}

// GetOrderQueryHandler executes GetOrderQuery and returns the order with
// its items if found.
type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetOrderQueryHandler constructs a GetOrderQueryHandler.
func NewGetOrderQueryHandler(repo ports.OrderRepository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

// Handle resolves the reference by id first, then by order number when
// the reference is not a well-formed id.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*OrderWithItems, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, query.OrderRef)
	if errors.Is(err, ports.ErrInvalidID) {
		order, err = h.repo.GetByNumber(ctx, query.OrderRef)
	}
	if err != nil {
		return nil, err
	}

	items, err := h.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &OrderWithItems{Order: *order, Items: items}, nil
}
