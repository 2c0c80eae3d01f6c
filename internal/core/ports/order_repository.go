package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities
// based on their status and idempotency key.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order by id holding a row lock for the
	// duration of the surrounding transaction. Used by commands that
	// read-modify-write the order state.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByIdempotencyKey retrieves the order created under the given
	// idempotency key. Returns an ObjectNotFoundError when no creation
	// with that key has been recorded.
	GetByIdempotencyKey(ctx context.Context, key string) (*order.Order, error)

	// GetAllInStatus retrieves all orders currently in the given status,
	// locking each returned row for update; rows locked by a concurrent
	// transaction are skipped. Used by the assignment sweep to find
	// orders awaiting a courier without racing cancellation.
	GetAllInStatus(ctx context.Context, status order.Status) ([]*order.Order, error)
}
