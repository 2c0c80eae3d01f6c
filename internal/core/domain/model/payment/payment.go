package payment

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrPaymentIsNotConstructed is returned when a Payment instance was not
	// created through NewPayment or RestorePayment.
	ErrPaymentIsNotConstructed = errors.New("Payment must be created via NewPayment or RestorePayment constructor")

	// ErrPaymentAlreadySettled is returned when a capture or failure is
	// applied to a payment already in a terminal status. Reconciliation
	// treats this as "replay detected", not as a failure.
	ErrPaymentAlreadySettled = errors.New("payment is already settled")
)

// Status is the settlement state of a single payment intent.
type Status string

const (
	// StatusPending means the intent exists and awaits the provider outcome.
	StatusPending Status = "pending"
	// StatusAuthorized means funds are held but not captured.
	StatusAuthorized Status = "authorized"
	// StatusCaptured means the provider confirmed settlement. Terminal.
	StatusCaptured Status = "captured"
	// StatusFailed means the provider declined or errored. Terminal.
	StatusFailed Status = "failed"
	// StatusRefunded means a captured amount was returned. Terminal.
	StatusRefunded Status = "refunded"
)

// Validate checks the status against the supported set.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusAuthorized, StatusCaptured, StatusFailed, StatusRefunded:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("payment status",
			fmt.Errorf("%q is not a supported payment status", string(s)))
	}
}

// IsSettled reports whether the status admits no further provider outcomes.
func (s Status) IsSettled() bool {
	return s == StatusCaptured || s == StatusFailed || s == StatusRefunded
}

// Payment is one payment intent against an order. The provider transaction
// id is unique, which is what makes webhook reconciliation idempotent:
// a replayed webhook resolves to the same row and finds it already settled.
//
// At most one capturable (pending or authorized) payment exists per order;
// the coordinator reuses an open intent instead of creating a second one.
type Payment struct {
	id            kernel.UUID
	orderID       kernel.UUID
	provider      string
	providerTxnID string
	amount        kernel.Money
	status        Status
	capturedAt    *time.Time
	metadata      string

	isConstructed bool
}

// NewPayment creates a pending payment intent for an order.
func NewPayment(
	id kernel.UUID,
	orderID kernel.UUID,
	provider string,
	providerTxnID string,
	amount kernel.Money,
) (*Payment, error) {
	p := &Payment{
		status:        StatusPending,
		isConstructed: true,
	}

	if err := errors.Join(
		p.setID(id),
		p.setOrderID(orderID),
		p.setProvider(provider),
		p.setProviderTxnID(providerTxnID),
		p.setAmount(amount),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestorePayment reconstructs a payment from persistence.
func RestorePayment(
	id kernel.UUID,
	orderID kernel.UUID,
	provider string,
	providerTxnID string,
	amount kernel.Money,
	status Status,
	capturedAt *time.Time,
	metadata string,
) (*Payment, error) {
	p, err := NewPayment(id, orderID, provider, providerTxnID, amount)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	p.status = status
	p.capturedAt = capturedAt
	p.metadata = metadata
	return p, nil
}

// Validate ensures the Payment was created through a constructor.
func (p *Payment) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrPaymentIsNotConstructed
	}
	return nil
}

// ID returns the payment's unique identifier.
func (p *Payment) ID() kernel.UUID {
	return p.id
}

// OrderID returns the owning order's identifier.
func (p *Payment) OrderID() kernel.UUID {
	return p.orderID
}

// Provider returns the payment provider name.
func (p *Payment) Provider() string {
	return p.provider
}

// ProviderTxnID returns the provider's opaque transaction reference.
func (p *Payment) ProviderTxnID() string {
	return p.providerTxnID
}

// Amount returns the intent amount.
func (p *Payment) Amount() kernel.Money {
	return p.amount
}

// Status returns the settlement status.
func (p *Payment) Status() Status {
	return p.status
}

// CapturedAt returns when the capture settled, if it did.
func (p *Payment) CapturedAt() *time.Time {
	return p.capturedAt
}

// Metadata returns the raw provider metadata recorded at settlement.
func (p *Payment) Metadata() string {
	return p.metadata
}

// IsCapturable reports whether the intent can still settle.
func (p *Payment) IsCapturable() bool {
	return !p.status.IsSettled()
}

// Capture settles the payment, stamping captured_at and recording provider
// metadata. Fails with ErrPaymentAlreadySettled on replays.
func (p *Payment) Capture(metadata string) error {
	if p.status.IsSettled() {
		return fmt.Errorf("%w: status is %s", ErrPaymentAlreadySettled, p.status)
	}

	now := time.Now().UTC()
	p.status = StatusCaptured
	p.capturedAt = &now
	p.metadata = metadata
	return nil
}

// Fail marks the payment failed, leaving the owning order free to retry
// with a new intent. Fails with ErrPaymentAlreadySettled on replays.
func (p *Payment) Fail(metadata string) error {
	if p.status.IsSettled() {
		return fmt.Errorf("%w: status is %s", ErrPaymentAlreadySettled, p.status)
	}

	p.status = StatusFailed
	p.metadata = metadata
	return nil
}

// Refund marks a captured payment as returned.
func (p *Payment) Refund() error {
	if p.status != StatusCaptured {
		return fmt.Errorf("%w: status is %s", ErrPaymentAlreadySettled, p.status)
	}

	p.status = StatusRefunded
	return nil
}

func (p *Payment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *Payment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	p.orderID = orderID
	return nil
}

func (p *Payment) setProvider(provider string) error {
	if provider == "" {
		return errs.NewValueIsRequiredError("provider")
	}
	p.provider = provider
	return nil
}

func (p *Payment) setProviderTxnID(providerTxnID string) error {
	if providerTxnID == "" {
		return errs.NewValueIsRequiredError("provider transaction id")
	}
	p.providerTxnID = providerTxnID
	return nil
}

func (p *Payment) setAmount(amount kernel.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	p.amount = amount
	return nil
}
