// Package stockrepo provides data transfer objects and mapping functions for stock persistence.
// This package implements the repository pattern for the per-store inventory ledger, handling
// the conversion between domain entities and database representations.
package stockrepo

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/stock"

	"github.com/google/uuid"
)

// StockDTO represents the database structure for persisting stock records.
// The (store_id, product_id) pair is the natural key; reads that mutate the
// ledger lock rows in ascending product_id order.
type StockDTO struct {
	StoreID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int       `gorm:"not null"`
	Reserved  int       `gorm:"not null"`
}

// TableName specifies the database table name for stock entities.
// Overrides GORM's default naming convention to use "stocks".
func (StockDTO) TableName() string {
	return "stocks"
}

// fromDomain converts a stock domain aggregate to its database representation.
func fromDomain(aggregate *stock.Stock) StockDTO {
	return StockDTO{
		StoreID:   aggregate.StoreID().Bytes(),
		ProductID: aggregate.ProductID().Bytes(),
		Quantity:  aggregate.Quantity(),
		Reserved:  aggregate.Reserved(),
	}
}

// toDomain converts a database DTO to a stock domain aggregate.
func toDomain(dto StockDTO) (*stock.Stock, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}
	storeID, err := kernel.UUIDFromBytes(dto.StoreID[:])
	if err != nil {
		return nil, err
	}

	return stock.RestoreStock(productID, storeID, dto.Quantity, dto.Reserved)
}
