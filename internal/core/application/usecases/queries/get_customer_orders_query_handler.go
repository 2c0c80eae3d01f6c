package queries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCustomerOrdersQueryHandler reads a customer's order history from the
// database, newest first.
type GetCustomerOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetCustomerOrdersQueryHandler creates a handler for order history reads.
func NewGetCustomerOrdersQueryHandler(db *gorm.DB) GetCustomerOrdersQueryHandler {
	return GetCustomerOrdersQueryHandler{db: db}
}

// Handle executes the query. An unknown customer simply gets an empty page.
func (h GetCustomerOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetCustomerOrdersQuery,
) ([]CustomerOrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			store_id,
			status,
			payment_method,
			total,
			rating
		FROM orders
		WHERE customer_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, query.CustomerID().Bytes(), query.Limit(), query.Offset()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]CustomerOrderResponse, 0)
	for rows.Next() {
		var (
			resp    CustomerOrderResponse
			id      uuid.UUID
			storeID uuid.UUID
		)

		if err := rows.Scan(&id, &storeID, &resp.Status, &resp.PaymentMethod, &resp.Total, &resp.Rating); err != nil {
			return nil, err
		}

		resp.ID = id.String()
		resp.StoreID = storeID.String()
		orders = append(orders, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
