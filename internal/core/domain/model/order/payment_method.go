package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// PaymentMethod is how the customer pays for the order.
type PaymentMethod string

const (
	// PaymentMethodCard settles through a card provider webhook.
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodCash settles on delivery; such orders skip payment_pending.
	PaymentMethodCash PaymentMethod = "cash"
	// PaymentMethodWallet settles through a wallet provider webhook.
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Validate checks the method against the supported set.
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodWallet:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("payment method",
			fmt.Errorf("%q is not a supported payment method", string(m)))
	}
}

// IsPrepaid reports whether the method requires settlement before confirmation.
func (m PaymentMethod) IsPrepaid() bool {
	return m != PaymentMethodCash
}

// PaymentStatus is the settlement state of the order as a whole, distinct
// from the per-intent payment.Status tracked by the payment aggregate.
type PaymentStatus string

const (
	// PaymentStatusPending means no capture has been reconciled yet.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPaid means a capture was reconciled against the order.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusFailed means the last capture attempt failed.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusRefunded means the captured amount was returned.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Validate checks the status against the supported set.
func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("payment status",
			fmt.Errorf("%q is not a supported payment status", string(s)))
	}
}
