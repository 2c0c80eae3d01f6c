package stockrepo

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/stock"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements StockRepository using GORM.
type GormStockRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormStockRepository creates a new GORM stock repository.
func NewGormStockRepository(db *gorm.DB, tracker aggregateTracker) *GormStockRepository {
	return &GormStockRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new stock record to the database.
func (r *GormStockRepository) Add(ctx context.Context, aggregate *stock.Stock) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: stock %s/%s",
				ports.ErrAlreadyExists, aggregate.StoreID(), aggregate.ProductID())
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ProductID(), aggregate)
	return nil
}

// Update saves changes to existing stock records. Quantity and reserved are
// written explicitly so that a count dropping to zero still persists.
func (r *GormStockRepository) Update(ctx context.Context, aggregates ...*stock.Stock) error {
	for _, aggregate := range aggregates {
		if err := aggregate.Validate(); err != nil {
			return err
		}

		dto := fromDomain(aggregate)
		result := r.db.WithContext(ctx).Model(&StockDTO{}).
			Where("store_id = ? AND product_id = ?", dto.StoreID, dto.ProductID).
			Updates(map[string]any{
				"quantity": dto.Quantity,
				"reserved": dto.Reserved,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		r.tracker.TrackAggregate(aggregate.ProductID(), aggregate)
	}

	return nil
}

// Get retrieves the stock record for one product of a store.
func (r *GormStockRepository) Get(
	ctx context.Context, storeID kernel.UUID, productID kernel.UUID,
) (*stock.Stock, error) {
	if err := errors.Join(storeID.Validate(), productID.Validate()); err != nil {
		return nil, err
	}

	var dto StockDTO
	err := r.db.WithContext(ctx).
		First(&dto, "store_id = ? AND product_id = ?", storeID.Bytes(), productID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("stock", productID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetForUpdate retrieves stock records for the given products holding
// FOR UPDATE row locks. Rows are locked in ascending product id order so
// concurrent multi-line reservations cannot deadlock each other. Must run
// inside a transaction for the locks to outlive the query.
func (r *GormStockRepository) GetForUpdate(
	ctx context.Context, storeID kernel.UUID, productIDs []kernel.UUID,
) ([]*stock.Stock, error) {
	if err := storeID.Validate(); err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return nil, errs.NewValueIsRequiredError("productIDs")
	}

	ids := make([]uuid.UUID, 0, len(productIDs))
	for _, productID := range productIDs {
		if err := productID.Validate(); err != nil {
			return nil, err
		}
		ids = append(ids, productID.Bytes())
	}

	var dtos []StockDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND product_id IN ?", storeID.Bytes(), ids).
		Order("product_id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	byProduct := make(map[uuid.UUID]StockDTO, len(dtos))
	for _, dto := range dtos {
		byProduct[dto.ProductID] = dto
	}

	stocks := make([]*stock.Stock, 0, len(productIDs))
	for _, productID := range productIDs {
		dto, ok := byProduct[productID.Bytes()]
		if !ok {
			return nil, errs.NewObjectNotFoundError("stock", productID.String())
		}

		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}

	return stocks, nil
}
