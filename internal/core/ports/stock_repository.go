package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/stock"
)

// StockRepository defines the persistence contract for per-product stock
// records of a store.
type StockRepository interface {
	// Add persists a new stock record.
	Add(ctx context.Context, aggregate *stock.Stock) error

	// Update persists changes to existing stock records.
	Update(ctx context.Context, aggregates ...*stock.Stock) error

	// Get retrieves the stock record for one product of a store.
	Get(ctx context.Context, storeID kernel.UUID, productID kernel.UUID) (*stock.Stock, error)

	// GetForUpdate retrieves the stock records for the given products of a
	// store, holding row locks for the duration of the surrounding
	// transaction. Rows are locked in ascending product id order so that
	// concurrent multi-line reservations cannot deadlock each other.
	// Returns an ObjectNotFoundError naming the first product with no
	// stock record.
	GetForUpdate(ctx context.Context, storeID kernel.UUID, productIDs []kernel.UUID) ([]*stock.Stock, error)
}
