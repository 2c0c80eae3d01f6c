package ports

import (
	"context"
)

// Notification is an order lifecycle event published to interested
// consumers (customer apps, courier apps, store dashboards).
type Notification struct {
	OrderID string `json:"order_id"`
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// NotificationPublisher emits lifecycle notifications. Publishing is
// fire-and-forget and runs outside the command's transaction: a lost
// notification never rolls back an order state change.
type NotificationPublisher interface {
	Publish(ctx context.Context, notification Notification) error
}
