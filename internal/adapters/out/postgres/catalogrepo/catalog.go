// Package catalogrepo provides read access to the product catalog tables.
// Orders snapshot prices at creation, so the catalog is read-only from the
// order flow's point of view; writes come from a separate back office.
package catalogrepo

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductDTO represents the database structure for catalog products.
type ProductDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID   uuid.UUID `gorm:"type:uuid;index"`
	Name      string    `gorm:"type:varchar(255)"`
	Price     int64     `gorm:"not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the database table name for product entities.
func (ProductDTO) TableName() string {
	return "products"
}

// GormProductCatalog implements ProductCatalog using GORM.
type GormProductCatalog struct {
	db *gorm.DB
}

// NewGormProductCatalog creates a new GORM product catalog.
func NewGormProductCatalog(db *gorm.DB) *GormProductCatalog {
	return &GormProductCatalog{db: db}
}

// GetActiveProductsByIDs resolves the active products of a store by id.
// The result preserves the request order. The first missing or inactive id
// produces an ObjectNotFoundError so order creation fails closed on
// delisted items.
func (c *GormProductCatalog) GetActiveProductsByIDs(
	ctx context.Context, storeID kernel.UUID, ids []kernel.UUID,
) ([]ports.Product, error) {
	if err := storeID.Validate(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errs.NewValueIsRequiredError("ids")
	}

	rawIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		rawIDs = append(rawIDs, id.Bytes())
	}

	var dtos []ProductDTO
	err := c.db.WithContext(ctx).
		Where("store_id = ? AND id IN ? AND is_active", storeID.Bytes(), rawIDs).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]ProductDTO, len(dtos))
	for _, dto := range dtos {
		byID[dto.ID] = dto
	}

	products := make([]ports.Product, 0, len(ids))
	for _, id := range ids {
		dto, ok := byID[id.Bytes()]
		if !ok {
			return nil, errs.NewObjectNotFoundError("product", id.String())
		}

		product, err := toProduct(dto)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

func toProduct(dto ProductDTO) (ports.Product, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.Product{}, err
	}
	storeID, err := kernel.UUIDFromBytes(dto.StoreID[:])
	if err != nil {
		return ports.Product{}, err
	}
	price, err := kernel.NewMoney(dto.Price)
	if err != nil {
		return ports.Product{}, err
	}

	return ports.Product{
		ID:       id,
		StoreID:  storeID,
		Name:     dto.Name,
		Price:    price,
		IsActive: dto.IsActive,
	}, nil
}
