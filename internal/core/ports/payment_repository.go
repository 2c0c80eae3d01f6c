package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/payment"
)

// PaymentRepository defines the persistence contract for payment intents.
// The provider transaction id carries a unique constraint, which is what
// webhook reconciliation relies on for replay detection.
type PaymentRepository interface {
	// Add persists a new payment intent.
	Add(ctx context.Context, aggregate *payment.Payment) error

	// Update persists changes to an existing payment intent.
	Update(ctx context.Context, aggregate *payment.Payment) error

	// GetByProviderTxnID retrieves the payment recorded under the
	// provider's transaction reference. Returns an ObjectNotFoundError
	// for transaction ids this service never issued.
	GetByProviderTxnID(ctx context.Context, providerTxnID string) (*payment.Payment, error)

	// GetCapturableByOrderID retrieves the order's open (pending or
	// authorized) payment intent, if one exists. Used to reuse the open
	// intent instead of stacking a second capturable payment on the
	// same order.
	GetCapturableByOrderID(ctx context.Context, orderID kernel.UUID) (*payment.Payment, error)
}
