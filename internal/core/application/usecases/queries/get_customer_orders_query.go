package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetCustomerOrdersQueryIsNotConstructed = errors.New(
	"GetCustomerOrdersQuery must be created via NewGetCustomerOrdersQuery constructor",
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetCustomerOrdersQuery retrieves a page of the customer's orders,
// newest first.
type GetCustomerOrdersQuery struct { //nolint:recvcheck //using for validation
	customerID kernel.UUID
	limit      int
	offset     int

	guard guard.ConstructorGuard
}

// NewGetCustomerOrdersQuery creates a query for a customer's order history.
// Out-of-range paging values are clamped rather than rejected.
func NewGetCustomerOrdersQuery(customerID kernel.UUID, limit int, offset int) (GetCustomerOrdersQuery, error) {
	if err := customerID.Validate(); err != nil {
		return GetCustomerOrdersQuery{}, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return GetCustomerOrdersQuery{
		customerID: customerID,
		limit:      limit,
		offset:     offset,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCustomerOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetCustomerOrdersQueryIsNotConstructed)
}

// CustomerID returns whose orders to list.
func (q GetCustomerOrdersQuery) CustomerID() kernel.UUID {
	return q.customerID
}

// Limit returns the page size.
func (q GetCustomerOrdersQuery) Limit() int {
	return q.limit
}

// Offset returns the page start.
func (q GetCustomerOrdersQuery) Offset() int {
	return q.offset
}

// CustomerOrderResponse is one row of the customer's order history.
type CustomerOrderResponse struct {
	ID            string `json:"id"`
	StoreID       string `json:"store_id"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	Total         int64  `json:"total"`
	Rating        int    `json:"rating,omitempty"`
}
