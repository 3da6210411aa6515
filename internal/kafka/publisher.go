package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/segmentio/kafka-go"
)

// OrderEvent is the wire shape of one order lifecycle event.
type OrderEvent struct {
	Type           string `json:"type"`
	OrderID        string `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	TotalCents     int64  `json:"total_cents"`
	OccurredAt     string `json:"occurred_at"`
}

// Publisher writes order lifecycle events to Kafka. Marketplace
// synchronization consumes this topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher configures a writer keyed by order id so one order's
// events stay in a single partition.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  5,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Close releases the writer.
func (p *Publisher) Close() error { return p.writer.Close() }

func (p *Publisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	return p.publish(ctx, OrderEvent{
		Type:        "order.created",
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Status:      string(order.Status),
		TotalCents:  order.TotalCents,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, order domain.Order, previous domain.OrderStatus) error {
	return p.publish(ctx, OrderEvent{
		Type:           "order.status_changed",
		OrderID:        order.ID,
		OrderNumber:    order.Number,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		TotalCents:     order.TotalCents,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Publisher) publish(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
	})
}
