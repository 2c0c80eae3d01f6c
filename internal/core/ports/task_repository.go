package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/task"
)

// TaskRepository defines the persistence contract for courier tasks.
type TaskRepository interface {
	// Add persists a new task.
	Add(ctx context.Context, aggregate *task.Task) error

	// Update persists changes to an existing task.
	Update(ctx context.Context, aggregate *task.Task) error

	// GetByOrderID retrieves the task bound to an order.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*task.Task, error)
}
