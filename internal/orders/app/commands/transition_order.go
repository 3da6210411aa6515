package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// TransitionOrderCommand moves an order to a target status. OrderRef may
// be the opaque order id or the human-readable order number. ActorID is
// the admin user driving the change, empty for webhook-triggered calls.
type TransitionOrderCommand struct {
	OrderRef     string
	Target       domain.OrderStatus
	TrackingCode string
	ActorID      string
}

func (c TransitionOrderCommand) Validate() error {
	if strings.TrimSpace(c.OrderRef) == "" {
		return errors.New("order reference is required")
	}
	return domain.ValidateTransition(c.Target, c.TrackingCode)
}

// SideEffectKind names the best-effort steps that follow a persisted transition.
type SideEffectKind string

const (
	SideEffectStock        SideEffectKind = "stock"
	SideEffectNotification SideEffectKind = "notification"
	SideEffectEvent        SideEffectKind = "event"
)

// SideEffectFailure reports one failed best-effort step. The primary
// status change has already been committed when any of these occur.
type SideEffectFailure struct {
	Kind      SideEffectKind
	ProductID string
	Err       error
}

// TransitionResult reports the committed transition plus every side
// effect that failed along the way, so callers and tests can observe
// both outcomes independently.
type TransitionResult struct {
	Order       *domain.Order
	Previous    domain.OrderStatus
	SideEffects []SideEffectFailure
}

// Changed reports whether the transition moved the order to a new status.
func (r *TransitionResult) Changed() bool {
	return r.Order.Status != r.Previous
}

// Failed returns the failures of one side-effect kind.
func (r *TransitionResult) Failed(kind SideEffectKind) []SideEffectFailure {
	var out []SideEffectFailure
	for _, f := range r.SideEffects {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

type TransitionHandler interface {
	Handle(ctx context.Context, cmd TransitionOrderCommand) (*TransitionResult, error)
}

// TransitionOrderHandler applies the transition contract shared by the
// admin path and the webhook path: validate, persist, then best-effort
// stock adjustment, notification and event publication.
type TransitionOrderHandler struct {
	repo     ports.OrderRepository
	stock    ports.StockLedger
	notifier ports.Notifier
	events   ports.EventBus
}

func NewTransitionOrderHandler(
	repo ports.OrderRepository,
	stock ports.StockLedger,
	notifier ports.Notifier,
	events ports.EventBus,
) *TransitionOrderHandler {
	return &TransitionOrderHandler{
		repo:     repo,
		stock:    stock,
		notifier: notifier,
		events:   events,
	}
}

func (h *TransitionOrderHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := ResolveOrder(ctx, h.repo, cmd.OrderRef)
	if err != nil {
		return nil, err
	}

	previous := order.Status

	if err := h.repo.UpdateStatus(ctx, order.ID, cmd.Target, cmd.TrackingCode); err != nil {
		return nil, err
	}

	order.Status = cmd.Target
	if strings.TrimSpace(cmd.TrackingCode) != "" {
		order.TrackingCode = cmd.TrackingCode
	}
	order.UpdatedAt = time.Now().UTC()

	result := &TransitionResult{Order: order, Previous: previous}

	decrementStock := cmd.Target == domain.StatusConfirmed && previous != domain.StatusConfirmed
	notify := result.Changed() && strings.TrimSpace(order.CustomerEmail) != ""

	var items []domain.Item
	if decrementStock || notify {
		items, err = h.repo.GetItems(ctx, order.ID)
		if err != nil {
			// Both remaining steps need the snapshot; report and stop here.
			result.SideEffects = append(result.SideEffects, SideEffectFailure{
				Kind: SideEffectStock,
				Err:  fmt.Errorf("load order items: %w", err),
			})
			return result, nil
		}
	}

	if decrementStock {
		reason := fmt.Sprintf("order %s confirmed", order.Number)
		for _, item := range items {
			if err := h.stock.Adjust(ctx, item.ProductID, -item.Quantity, reason, cmd.ActorID); err != nil {
				result.SideEffects = append(result.SideEffects, SideEffectFailure{
					Kind:      SideEffectStock,
					ProductID: item.ProductID,
					Err:       err,
				})
			}
		}
	}

	if notify {
		display := domain.DisplayStatus(order.Status)
		if err := h.notifier.SendOrderStatusUpdate(ctx, *order, items, display, previous); err != nil {
			result.SideEffects = append(result.SideEffects, SideEffectFailure{
				Kind: SideEffectNotification,
				Err:  err,
			})
		}
	}

	if result.Changed() {
		if err := h.events.PublishOrderStatusChanged(ctx, *order, previous); err != nil {
			result.SideEffects = append(result.SideEffects, SideEffectFailure{
				Kind: SideEffectEvent,
				Err:  err,
			})
		}
	}

	return result, nil
}

// ResolveOrder looks an order up by id, falling back to order-number
// lookup only when the reference is not a well-formed id.
func ResolveOrder(ctx context.Context, repo ports.OrderRepository, ref string) (*domain.Order, error) {
	order, err := repo.GetByID(ctx, ref)
	if errors.Is(err, ports.ErrInvalidID) {
		return repo.GetByNumber(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}
