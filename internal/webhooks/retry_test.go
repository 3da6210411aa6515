package webhooks_test

import (
	"context"
	"testing"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/ports"
	"github.com/partsdepot/backoffice/internal/webhooks"
	"github.com/partsdepot/backoffice/internal/webhooks/memory"
)

func failedDelivery(id, paymentID string, attempts int) ports.WebhookDelivery {
	now := time.Now().UTC()
	return ports.WebhookDelivery{
		ID:        id,
		PaymentID: paymentID,
		Status:    ports.DeliveryFailed,
		Attempts:  attempts,
		LastError: "gateway timeout",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRetryServiceProcessFailed(t *testing.T) {
	t.Run("recovers failed deliveries", func(t *testing.T) {
		log := memory.NewDeliveryLog()
		ctx := context.Background()
		_ = log.Record(ctx, failedDelivery("d-1", "pay-1", 1))
		_ = log.Record(ctx, failedDelivery("d-2", "pay-2", 1))

		processor := webhooks.NewProcessor(&mockGateway{}, linkedOrderService(), log, discardLogger())
		service := webhooks.NewRetryService(log, processor, discardLogger(), nil)

		attempted, recovered, err := service.ProcessFailed(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if attempted != 2 || recovered != 2 {
			t.Errorf("expected 2 attempted and 2 recovered, got %d and %d", attempted, recovered)
		}

		stats, _ := log.Stats(ctx)
		if stats.Succeeded != 2 || stats.Failed != 0 {
			t.Errorf("unexpected stats after sweep: %+v", stats)
		}
	})

	t.Run("one failing delivery does not block the rest", func(t *testing.T) {
		log := memory.NewDeliveryLog()
		ctx := context.Background()
		_ = log.Record(ctx, failedDelivery("d-1", "bad-payment", 1))
		_ = log.Record(ctx, failedDelivery("d-2", "pay-2", 1))

		gateway := &mockGateway{
			getPaymentStatusFn: func(_ context.Context, paymentID string) (*ports.PaymentLookup, error) {
				if paymentID == "bad-payment" {
					return nil, ports.ErrGatewayUnavailable
				}
				return &ports.PaymentLookup{PaymentID: paymentID, Status: ports.PaymentApproved}, nil
			},
		}
		processor := webhooks.NewProcessor(gateway, linkedOrderService(), log, discardLogger())
		service := webhooks.NewRetryService(log, processor, discardLogger(), nil)

		attempted, recovered, err := service.ProcessFailed(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if attempted != 2 {
			t.Errorf("expected 2 attempted, got %d", attempted)
		}
		if recovered != 1 {
			t.Errorf("expected 1 recovered, got %d", recovered)
		}
	})

	t.Run("skips deliveries past the attempt bound", func(t *testing.T) {
		log := memory.NewDeliveryLog()
		ctx := context.Background()
		_ = log.Record(ctx, failedDelivery("d-1", "pay-1", 3))
		_ = log.Record(ctx, failedDelivery("d-2", "pay-2", 1))

		processor := webhooks.NewProcessor(&mockGateway{}, linkedOrderService(), log, discardLogger())
		service := webhooks.NewRetryService(log, processor, discardLogger(), nil, webhooks.WithMaxAttempts(3))

		attempted, _, err := service.ProcessFailed(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if attempted != 1 {
			t.Errorf("expected 1 attempted, got %d", attempted)
		}
	})

	t.Run("honors the batch size", func(t *testing.T) {
		log := memory.NewDeliveryLog()
		ctx := context.Background()
		for _, id := range []string{"d-1", "d-2", "d-3"} {
			_ = log.Record(ctx, failedDelivery(id, "pay-"+id, 1))
		}

		processor := webhooks.NewProcessor(&mockGateway{}, linkedOrderService(), log, discardLogger())
		service := webhooks.NewRetryService(log, processor, discardLogger(), nil, webhooks.WithBatchSize(2))

		attempted, _, err := service.ProcessFailed(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if attempted != 2 {
			t.Errorf("expected 2 attempted, got %d", attempted)
		}
	})
}

func TestRetryServiceLifecycle(t *testing.T) {
	newService := func() *webhooks.RetryService {
		log := memory.NewDeliveryLog()
		processor := webhooks.NewProcessor(&mockGateway{}, linkedOrderService(), log, discardLogger())
		return webhooks.NewRetryService(log, processor, discardLogger(), nil, webhooks.WithInterval(time.Hour))
	}

	t.Run("start and stop toggle the running state", func(t *testing.T) {
		service := newService()

		if service.Running() {
			t.Fatal("expected service to start stopped")
		}

		service.Start()
		if !service.Running() {
			t.Fatal("expected service to be running after Start")
		}

		service.Stop()
		if service.Running() {
			t.Fatal("expected service to be stopped after Stop")
		}
	})

	t.Run("repeated starts and stops are no-ops", func(t *testing.T) {
		service := newService()

		service.Start()
		service.Start()
		if !service.Running() {
			t.Fatal("expected service to be running")
		}

		service.Stop()
		service.Stop()
		if service.Running() {
			t.Fatal("expected service to be stopped")
		}
	})

	t.Run("can be restarted after stopping", func(t *testing.T) {
		service := newService()

		service.Start()
		service.Stop()
		service.Start()
		if !service.Running() {
			t.Fatal("expected service to be running after restart")
		}
		service.Stop()
	})
}
