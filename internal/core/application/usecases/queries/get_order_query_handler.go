package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads one order projection from the database.
// The caller must be the order's customer; everything else is rejected
// before any data leaves the handler.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order reads.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query.
// Returns an ObjectNotFoundError for unknown orders and ErrNotOrderOwner
// when the caller did not place the order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			store_id,
			status,
			payment_method,
			payment_status,
			items,
			subtotal,
			delivery_fee,
			total,
			address_text,
			courier_id,
			confirmed_at,
			delivered_at,
			cancel_reason,
			rating
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	var (
		resp         GetOrderQueryResponse
		id           uuid.UUID
		customerID   uuid.UUID
		storeID      uuid.UUID
		itemsRaw     []byte
		courierID    *uuid.UUID
		confirmedAt  sql.NullTime
		deliveredAt  sql.NullTime
		cancelReason sql.NullString
	)

	err := row.Scan(
		&id,
		&customerID,
		&storeID,
		&resp.Status,
		&resp.PaymentMethod,
		&resp.PaymentStatus,
		&itemsRaw,
		&resp.Subtotal,
		&resp.DeliveryFee,
		&resp.Total,
		&resp.AddressText,
		&courierID,
		&confirmedAt,
		&deliveredAt,
		&cancelReason,
		&resp.Rating,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if customerID != query.CallerID().Bytes() {
		return GetOrderQueryResponse{}, ErrNotOrderOwner
	}

	resp.ID = id.String()
	resp.StoreID = storeID.String()
	if courierID != nil {
		s := courierID.String()
		resp.CourierID = &s
	}
	resp.ConfirmedAt = nullTimePtr(confirmedAt)
	resp.DeliveredAt = nullTimePtr(deliveredAt)
	if cancelReason.Valid {
		resp.CancelReason = cancelReason.String
	}

	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &resp.Items); err != nil {
			return GetOrderQueryResponse{}, err
		}
	}

	return resp, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
