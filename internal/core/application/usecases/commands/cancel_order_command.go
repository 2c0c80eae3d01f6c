package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCancelOrderCommandIsNotConstructed = errors.New(
		"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
	)

	// ErrNotOrderOwner is returned when a caller acts on an order placed by
	// somebody else.
	ErrNotOrderOwner = errors.New("caller does not own the order")

	// ErrActorNotPermitted is returned when the caller's account role does
	// not back the actor the cancellation claims to act as.
	ErrActorNotPermitted = errors.New("caller role does not permit the claimed actor")
)

// Cancellation actors recorded on the order for audit.
const (
	ActorCustomer = "customer"
	ActorStore    = "store"
	ActorSystem   = "system"
)

// CancelOrderCommand represents a request to cancel an order, recording
// who requested it and why. Cancellation compensates the stock
// reservation in the same transaction.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	callerID kernel.UUID
	reason   string
	actor    string

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand creates a command to cancel an order.
// The reason and actor are required; they are stored on the order.
func NewCancelOrderCommand(orderID kernel.UUID, callerID kernel.UUID, reason string, actor string) (CancelOrderCommand, error) {
	cmd := CancelOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCallerID(callerID),
		cmd.setReason(reason),
		cmd.setActor(actor),
	); err != nil {
		return CancelOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

// OrderID returns the order to cancel.
func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CallerID returns who requested the cancellation.
func (c CancelOrderCommand) CallerID() kernel.UUID {
	return c.callerID
}

// Reason returns the human-readable cancellation reason.
func (c CancelOrderCommand) Reason() string {
	return c.reason
}

// Actor returns which party cancelled: customer, store or system.
func (c CancelOrderCommand) Actor() string {
	return c.actor
}

func (c *CancelOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CancelOrderCommand) setCallerID(callerID kernel.UUID) error {
	if err := callerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("caller id", err)
	}

	c.callerID = callerID
	return nil
}

func (c *CancelOrderCommand) setReason(reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}

	c.reason = reason
	return nil
}

func (c *CancelOrderCommand) setActor(actor string) error {
	switch actor {
	case ActorCustomer, ActorStore, ActorSystem:
		c.actor = actor
		return nil
	default:
		return errs.NewValueIsInvalidError("actor")
	}
}
