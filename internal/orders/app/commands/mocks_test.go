package commands_test

import (
	"context"
	"sync"

	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

type mockRepository struct {
	createFn          func(ctx context.Context, order domain.Order, items []domain.Item) error
	getByIDFn         func(ctx context.Context, id string) (*domain.Order, error)
	getByNumberFn     func(ctx context.Context, number string) (*domain.Order, error)
	getByPaymentRefFn func(ctx context.Context, paymentRef string) (*domain.Order, error)
	getItemsFn        func(ctx context.Context, orderID string) ([]domain.Item, error)
	updateStatusFn    func(ctx context.Context, id string, status domain.OrderStatus, trackingCode string) error
	setPaymentRefFn   func(ctx context.Context, id string, preferenceID, paymentRef string) error
	deleteFn          func(ctx context.Context, id string) error
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order, items []domain.Item) error {
	if m.createFn != nil {
		return m.createFn(ctx, order, items)
	}
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
	if m.getByPaymentRefFn != nil {
		return m.getByPaymentRefFn(ctx, paymentRef)
	}
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
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status, trackingCode)
	}
	return nil
}

func (m *mockRepository) SetPaymentRef(ctx context.Context, id string, preferenceID, paymentRef string) error {
	if m.setPaymentRefFn != nil {
		return m.setPaymentRefFn(ctx, id, preferenceID, paymentRef)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type stockAdjustment struct {
	productID string
	delta     int
	reason    string
	actorID   string
}

type mockStockLedger struct {
	mu          sync.Mutex
	adjustFn    func(ctx context.Context, productID string, delta int, reason, actorID string) error
	adjustments []stockAdjustment
}

func (m *mockStockLedger) Adjust(ctx context.Context, productID string, delta int, reason, actorID string) error {
	m.mu.Lock()
	m.adjustments = append(m.adjustments, stockAdjustment{productID, delta, reason, actorID})
	m.mu.Unlock()

	if m.adjustFn != nil {
		return m.adjustFn(ctx, productID, delta, reason, actorID)
	}
	return nil
}

type sentNotification struct {
	order         domain.Order
	displayStatus string
	previous      domain.OrderStatus
}

type mockNotifier struct {
	sendFn func(ctx context.Context, order domain.Order, items []domain.Item, displayStatus string, previous domain.OrderStatus) error
	sent   []sentNotification
}

func (m *mockNotifier) SendOrderStatusUpdate(ctx context.Context, order domain.Order, items []domain.Item, displayStatus string, previous domain.OrderStatus) error {
	m.sent = append(m.sent, sentNotification{order, displayStatus, previous})
	if m.sendFn != nil {
		return m.sendFn(ctx, order, items, displayStatus, previous)
	}
	return nil
}

type mockEventBus struct {
	publishCreatedFn       func(ctx context.Context, order domain.Order) error
	publishStatusChangedFn func(ctx context.Context, order domain.Order, previous domain.OrderStatus) error
	created                []domain.Order
	statusChanged          []domain.Order
}

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	m.created = append(m.created, order)
	if m.publishCreatedFn != nil {
		return m.publishCreatedFn(ctx, order)
	}
	return nil
}

func (m *mockEventBus) PublishOrderStatusChanged(ctx context.Context, order domain.Order, previous domain.OrderStatus) error {
	m.statusChanged = append(m.statusChanged, order)
	if m.publishStatusChangedFn != nil {
		return m.publishStatusChangedFn(ctx, order, previous)
	}
	return nil
}

type mockCouponRepository struct {
	createFn    func(ctx context.Context, coupon domain.Coupon) error
	getByCodeFn func(ctx context.Context, code string) (*domain.Coupon, error)
}

func (m *mockCouponRepository) Create(ctx context.Context, coupon domain.Coupon) error {
	if m.createFn != nil {
		return m.createFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, ports.ErrNotFound
}

type mockGateway struct {
	createPreferenceFn func(ctx context.Context, order domain.Order, items []domain.Item) (*ports.Preference, error)
	getPaymentStatusFn func(ctx context.Context, paymentID string) (*ports.PaymentLookup, error)
}

func (m *mockGateway) CreatePreference(ctx context.Context, order domain.Order, items []domain.Item) (*ports.Preference, error) {
	if m.createPreferenceFn != nil {
		return m.createPreferenceFn(ctx, order, items)
	}
	return &ports.Preference{ID: "pref-1", RedirectURL: "https://pay.example.com/pref-1"}, nil
}

func (m *mockGateway) GetPaymentStatus(ctx context.Context, paymentID string) (*ports.PaymentLookup, error) {
	if m.getPaymentStatusFn != nil {
		return m.getPaymentStatusFn(ctx, paymentID)
	}
	return &ports.PaymentLookup{PaymentID: paymentID, Status: ports.PaymentApproved}, nil
}
