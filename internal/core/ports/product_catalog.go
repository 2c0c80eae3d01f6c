package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// Product is the catalog's view of a sellable item: the current price and
// whether the item is orderable. Orders snapshot the price at creation and
// never re-read it.
type Product struct {
	ID       kernel.UUID
	StoreID  kernel.UUID
	Name     string
	Price    kernel.Money
	IsActive bool
}

// ProductCatalog provides read access to the store's sellable items.
type ProductCatalog interface {
	// GetActiveProductsByIDs resolves the active products of a store by id.
	// Returns an ObjectNotFoundError naming the first id that is missing
	// or inactive, so order creation fails closed on delisted items.
	GetActiveProductsByIDs(ctx context.Context, storeID kernel.UUID, ids []kernel.UUID) ([]Product, error)
}
