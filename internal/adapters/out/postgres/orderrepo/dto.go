// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"encoding/json"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The item snapshot is stored as a jsonb column because it never changes
// after creation; the idempotency key carries the unique constraint that
// serializes racing creators.
type OrderDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;index"`
	StoreID        uuid.UUID  `gorm:"type:uuid;index"`
	Items          []byte     `gorm:"type:jsonb"`
	Subtotal       int64      `gorm:"not null"`
	DeliveryFee    int64      `gorm:"not null"`
	Total          int64      `gorm:"not null"`
	PaymentMethod  string     `gorm:"type:varchar(16)"`
	PaymentStatus  string     `gorm:"type:varchar(16)"`
	Status         string     `gorm:"type:varchar(32);index"`
	CourierID      *uuid.UUID `gorm:"type:uuid;index"`
	AddressLat     float64
	AddressLon     float64
	AddressText    string
	IdempotencyKey string `gorm:"type:varchar(128);uniqueIndex"`
	ConfirmedAt    *time.Time
	AssignedAt     *time.Time
	PickedUpAt     *time.Time
	DeliveredAt    *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string
	CancelledBy    string `gorm:"type:varchar(16)"`
	Rating         int
	Feedback       string
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// itemJSON is the wire shape of one snapshot line inside the jsonb column.
// Field names line up with the read-side projections.
type itemJSON struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	items := make([]itemJSON, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, itemJSON{
			ProductID: item.ProductID().String(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().MinorUnits(),
		})
	}

	itemsRaw, err := json.Marshal(items)
	if err != nil {
		return OrderDTO{}, err
	}

	var courierID *uuid.UUID
	if id := aggregate.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	return OrderDTO{
		ID:             aggregate.ID().Bytes(),
		CustomerID:     aggregate.CustomerID().Bytes(),
		StoreID:        aggregate.StoreID().Bytes(),
		Items:          itemsRaw,
		Subtotal:       aggregate.Subtotal().MinorUnits(),
		DeliveryFee:    aggregate.DeliveryFee().MinorUnits(),
		Total:          aggregate.Total().MinorUnits(),
		PaymentMethod:  string(aggregate.PaymentMethod()),
		PaymentStatus:  string(aggregate.PaymentStatus()),
		Status:         aggregate.Status().String(),
		CourierID:      courierID,
		AddressLat:     aggregate.Address().Location().Latitude(),
		AddressLon:     aggregate.Address().Location().Longitude(),
		AddressText:    aggregate.Address().Text(),
		IdempotencyKey: aggregate.IdempotencyKey(),
		ConfirmedAt:    aggregate.ConfirmedAt(),
		AssignedAt:     aggregate.AssignedAt(),
		PickedUpAt:     aggregate.PickedUpAt(),
		DeliveredAt:    aggregate.DeliveredAt(),
		CompletedAt:    aggregate.CompletedAt(),
		CancelledAt:    aggregate.CancelledAt(),
		CancelReason:   aggregate.CancelReason(),
		CancelledBy:    aggregate.CancelledBy(),
		Rating:         aggregate.Rating(),
		Feedback:       aggregate.Feedback(),
	}, nil
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	storeID, err := kernel.UUIDFromBytes(dto.StoreID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	items, err := itemsFromJSON(dto.Items)
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewLocation(dto.AddressLat, dto.AddressLon)
	if err != nil {
		return nil, err
	}
	address, err := order.NewAddress(location, dto.AddressText)
	if err != nil {
		return nil, err
	}

	subtotal, err := kernel.NewMoney(dto.Subtotal)
	if err != nil {
		return nil, err
	}
	deliveryFee, err := kernel.NewMoney(dto.DeliveryFee)
	if err != nil {
		return nil, err
	}
	total, err := kernel.NewMoney(dto.Total)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		ID:             id,
		CustomerID:     customerID,
		StoreID:        storeID,
		Items:          items,
		Subtotal:       subtotal,
		DeliveryFee:    deliveryFee,
		Total:          total,
		PaymentMethod:  order.PaymentMethod(dto.PaymentMethod),
		PaymentStatus:  order.PaymentStatus(dto.PaymentStatus),
		Status:         status,
		CourierID:      courierID,
		Address:        address,
		IdempotencyKey: dto.IdempotencyKey,
		ConfirmedAt:    dto.ConfirmedAt,
		AssignedAt:     dto.AssignedAt,
		PickedUpAt:     dto.PickedUpAt,
		DeliveredAt:    dto.DeliveredAt,
		CompletedAt:    dto.CompletedAt,
		CancelledAt:    dto.CancelledAt,
		CancelReason:   dto.CancelReason,
		CancelledBy:    dto.CancelledBy,
		Rating:         dto.Rating,
		Feedback:       dto.Feedback,
	})
}

func itemsFromJSON(raw []byte) ([]order.Item, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var wire []itemJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(wire))
	for _, line := range wire {
		productID, err := kernel.UUIDFromString(line.ProductID)
		if err != nil {
			return nil, err
		}
		price, err := kernel.NewMoney(line.UnitPrice)
		if err != nil {
			return nil, err
		}
		item, err := order.NewItem(productID, line.Quantity, price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}
