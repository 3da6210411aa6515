package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/metrics"
	"github.com/partsdepot/backoffice/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableTransitionHandler struct {
	handler TransitionHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableTransitionHandler(handler TransitionHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableTransitionHandler {
	return &ObservableTransitionHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableTransitionHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*TransitionResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "TransitionOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordTransitionDuration(ctx, duration)
		o.metrics.RecordTransition(ctx, string(cmd.Target), success)
	}()

	o.logger.InfoContext(ctx, "transitioning order",
		"order_ref", cmd.OrderRef,
		"target", cmd.Target,
		"actor_id", cmd.ActorID,
	)

	result, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to transition order",
			"error", err,
			"order_ref", cmd.OrderRef,
			"target", cmd.Target,
		)
		return nil, err
	}

	// The transition is committed at this point; side-effect failures are
	// logged for operational follow-up, never surfaced as errors.
	for _, failure := range result.SideEffects {
		o.metrics.RecordSideEffectFailure(ctx, string(failure.Kind))
		o.logger.ErrorContext(ctx, "side effect failed after committed transition",
			"error", failure.Err,
			"kind", failure.Kind,
			"order_id", result.Order.ID,
			"order_number", result.Order.Number,
			"product_id", failure.ProductID,
		)
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", result.Order.ID),
		attribute.String("order.number", result.Order.Number),
		attribute.String("order.status", string(result.Order.Status)),
		attribute.String("order.previous_status", string(result.Previous)),
		attribute.Int("order.side_effect_failures", len(result.SideEffects)),
	)

	o.logger.InfoContext(ctx, "order transitioned",
		"order_id", result.Order.ID,
		"order_number", result.Order.Number,
		"from", result.Previous,
		"to", result.Order.Status,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return result, nil
}
