// Package kafka publishes order lifecycle notifications to a Kafka topic.
// Publishing is fire-and-forget: the writer runs in async mode and a failed
// delivery is logged, never surfaced to the command that produced the event.
package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"orderflow/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// NotificationPublisher implements ports.NotificationPublisher on top of a
// kafka-go writer. Messages are keyed by order id so every event of one
// order lands on the same partition, preserving per-order ordering for
// consumers.
type NotificationPublisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// NewNotificationPublisher creates a publisher writing to the given topic.
func NewNotificationPublisher(brokers []string, topic string, log *slog.Logger) *NotificationPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
	}
	writer.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			log.Error("notification delivery failed",
				"topic", topic, "count", len(messages), "error", err)
		}
	}

	return &NotificationPublisher{
		writer: writer,
		log:    log.With("component", "notification-publisher"),
	}
}

// Publish emits one lifecycle notification. With the writer in async mode
// this only fails on serialization problems; broker errors surface through
// the completion callback.
func (p *NotificationPublisher) Publish(ctx context.Context, notification ports.Notification) error {
	value, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notification.OrderID),
		Value: value,
	})
}

// Close flushes buffered messages and releases the writer's connections.
func (p *NotificationPublisher) Close() error {
	return p.writer.Close()
}
