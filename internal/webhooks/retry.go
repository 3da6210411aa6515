package webhooks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/ports"
)

const (
	DefaultRetryInterval = time.Minute
	DefaultBatchSize     = 50
	DefaultMaxAttempts   = 10
)

// RetryService periodically re-attempts failed webhook deliveries so the
// system recovers from transient failures without waiting for the gateway
// to redeliver.
type RetryService struct {
	log       ports.WebhookDeliveryLog
	processor *Processor
	logger    *slog.Logger
	metrics   *Metrics

	interval    time.Duration
	batchSize   int
	maxAttempts int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// RetryOption tunes the retry service.
type RetryOption func(*RetryService)

func WithInterval(d time.Duration) RetryOption {
	return func(s *RetryService) { s.interval = d }
}

func WithBatchSize(n int) RetryOption {
	return func(s *RetryService) { s.batchSize = n }
}

func WithMaxAttempts(n int) RetryOption {
	return func(s *RetryService) { s.maxAttempts = n }
}

func NewRetryService(log ports.WebhookDeliveryLog, processor *Processor, logger *slog.Logger, metrics *Metrics, opts ...RetryOption) *RetryService {
	s := &RetryService{
		log:         log,
		processor:   processor,
		logger:      logger,
		metrics:     metrics,
		interval:    DefaultRetryInterval,
		batchSize:   DefaultBatchSize,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background sweep. Starting an already-running
// service is a no-op.
func (s *RetryService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	s.logger.Info("webhook retry service started", "interval", s.interval)
}

// Stop halts the background sweep and waits for the current tick to
// finish. Stopping a stopped service is a no-op.
func (s *RetryService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.logger.Info("webhook retry service stopped")
}

// Running reports whether the background sweep is active.
func (s *RetryService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *RetryService) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.ProcessFailed(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("webhook retry sweep failed", "error", err)
			}
		}
	}
}

// ProcessFailed re-attempts every failed delivery still under the attempt
// bound. One delivery's failure never prevents processing of the rest;
// the first attempted and then the recovered counts are returned.
func (s *RetryService) ProcessFailed(ctx context.Context) (attempted, recovered int, err error) {
	start := time.Now()

	deliveries, err := s.log.ListFailed(ctx, s.batchSize, s.maxAttempts)
	if err != nil {
		return 0, 0, err
	}

	for _, delivery := range deliveries {
		attempted++
		if attemptErr := s.processor.Attempt(ctx, delivery); attemptErr == nil {
			recovered++
		}
		if ctx.Err() != nil {
			break
		}
	}

	if s.metrics != nil {
		s.metrics.RecordSweep(ctx, attempted, recovered, time.Since(start).Seconds())
	}

	if attempted > 0 {
		s.logger.InfoContext(ctx, "webhook retry sweep finished",
			"attempted", attempted, "recovered", recovered)
	}

	return attempted, recovered, nil
}

// Stats reports delivery counts for operational visibility.
func (s *RetryService) Stats(ctx context.Context) (ports.DeliveryStats, error) {
	return s.log.Stats(ctx)
}
