package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/partsdepot/backoffice/internal/orders/app/queries"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

type mockRepository struct {
	getByIDFn     func(ctx context.Context, id string) (*domain.Order, error)
	getByNumberFn func(ctx context.Context, number string) (*domain.Order, error)
	getItemsFn    func(ctx context.Context, orderID string) ([]domain.Item, error)
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order, items []domain.Item) error {
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if m.getByNumberFn != nil {
		return m.getByNumberFn(ctx, number)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Order, error) {
	return nil, ports.ErrNotFound
}

func (m *mockRepository) GetItems(ctx context.Context, orderID string) ([]domain.Item, error) {
	if m.getItemsFn != nil {
		return m.getItemsFn(ctx, orderID)
	}
	return nil, nil
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingCode string) error {
	return nil
}

func (m *mockRepository) SetPaymentRef(ctx context.Context, id string, preferenceID, paymentRef string) error {
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func TestGetOrder(t *testing.T) {
	const id = "4f2c8dd9-95a5-44a0-b8fc-2be8db20b831"

	order := &domain.Order{ID: id, Number: "ORD-000042", Status: domain.StatusPending}
	items := []domain.Item{{OrderID: id, ProductID: "brake-pad", Quantity: 1, UnitPriceCents: 4500}}

	t.Run("resolves by id", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, got string) (*domain.Order, error) {
				if got != id {
					return nil, ports.ErrNotFound
				}
				return order, nil
			},
			getItemsFn: func(_ context.Context, _ string) ([]domain.Item, error) {
				return items, nil
			},
		}
		handler := queries.NewGetOrderQueryHandler(repo)

		result, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderRef: id})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if result.Order.Number != "ORD-000042" {
			t.Errorf("expected order ORD-000042, got %q", result.Order.Number)
		}
		if len(result.Items) != 1 {
			t.Errorf("expected 1 item, got %d", len(result.Items))
		}
	})

	t.Run("falls back to number lookup for non-id references", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
				return nil, ports.ErrInvalidID
			},
			getByNumberFn: func(_ context.Context, number string) (*domain.Order, error) {
				if number != "ORD-000042" {
					return nil, ports.ErrNotFound
				}
				return order, nil
			},
		}
		handler := queries.NewGetOrderQueryHandler(repo)

		result, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderRef: "ORD-000042"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if result.Order.ID != id {
			t.Errorf("expected order %s, got %s", id, result.Order.ID)
		}
	})

	t.Run("propagates not found", func(t *testing.T) {
		handler := queries.NewGetOrderQueryHandler(&mockRepository{})

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderRef: id})
		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("rejects an empty reference", func(t *testing.T) {
		handler := queries.NewGetOrderQueryHandler(&mockRepository{})

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
