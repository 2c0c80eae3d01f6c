// Package queries contains read-only operations over the order store.
// Query handlers bypass the aggregate layer and read projections straight
// from the database, keeping the read path cheap.
package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)

	// ErrNotOrderOwner is returned when the caller requests an order placed
	// by somebody else.
	ErrNotOrderOwner = errors.New("caller does not own the order")
)

// GetOrderQuery retrieves one order as seen by its owning customer.
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	callerID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query to fetch an order for a customer.
func NewGetOrderQuery(orderID kernel.UUID, callerID kernel.UUID) (GetOrderQuery, error) {
	q := GetOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	if err := callerID.Validate(); err != nil {
		return GetOrderQuery{}, errs.NewValueIsInvalidErrorWithCause("caller id", err)
	}

	q.orderID = orderID
	q.callerID = callerID
	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the order to fetch.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// CallerID returns the requesting customer.
func (q GetOrderQuery) CallerID() kernel.UUID {
	return q.callerID
}

// OrderItemResponse is one line of the order projection.
type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// GetOrderQueryResponse is the customer-facing order projection.
type GetOrderQueryResponse struct {
	ID            string              `json:"id"`
	StoreID       string              `json:"store_id"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	PaymentStatus string              `json:"payment_status"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      int64               `json:"subtotal"`
	DeliveryFee   int64               `json:"delivery_fee"`
	Total         int64               `json:"total"`
	AddressText   string              `json:"address_text"`
	CourierID     *string             `json:"courier_id,omitempty"`
	ConfirmedAt   *time.Time          `json:"confirmed_at,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	CancelReason  string              `json:"cancel_reason,omitempty"`
	Rating        int                 `json:"rating,omitempty"`
}
