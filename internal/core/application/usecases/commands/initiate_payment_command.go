package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrInitiatePaymentCommandIsNotConstructed = errors.New(
		"InitiatePaymentCommand must be created via NewInitiatePaymentCommand constructor",
	)

	// ErrPaymentNotRequired is returned when a payment intent is requested
	// for a cash order.
	ErrPaymentNotRequired = errors.New("order does not require prepayment")
)

// InitiatePaymentCommand represents a request to open a payment intent
// against a prepaid order.
type InitiatePaymentCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	callerID kernel.UUID
	provider string

	guard guard.ConstructorGuard
}

// NewInitiatePaymentCommand creates a command to open a payment intent.
func NewInitiatePaymentCommand(orderID kernel.UUID, callerID kernel.UUID, provider string) (InitiatePaymentCommand, error) {
	cmd := InitiatePaymentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCallerID(callerID),
		cmd.setProvider(provider),
	); err != nil {
		return InitiatePaymentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c InitiatePaymentCommand) Validate() error {
	return c.guard.Validate(ErrInitiatePaymentCommandIsNotConstructed)
}

// OrderID returns the order to pay for.
func (c InitiatePaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CallerID returns the paying customer.
func (c InitiatePaymentCommand) CallerID() kernel.UUID {
	return c.callerID
}

// Provider returns the chosen payment provider.
func (c InitiatePaymentCommand) Provider() string {
	return c.provider
}

func (c *InitiatePaymentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *InitiatePaymentCommand) setCallerID(callerID kernel.UUID) error {
	if err := callerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("caller id", err)
	}

	c.callerID = callerID
	return nil
}

func (c *InitiatePaymentCommand) setProvider(provider string) error {
	if provider == "" {
		return errs.NewValueIsRequiredError("provider")
	}

	c.provider = provider
	return nil
}
