package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrRateOrderCommandIsNotConstructed = errors.New(
	"RateOrderCommand must be created via NewRateOrderCommand constructor",
)

// RateOrderCommand represents a customer rating a delivered order.
// Rating a delivered order also completes it.
type RateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	callerID kernel.UUID
	rating   int
	feedback string

	guard guard.ConstructorGuard
}

// NewRateOrderCommand creates a command to rate an order.
// Rating must be between 1 and 5; feedback is optional.
func NewRateOrderCommand(orderID kernel.UUID, callerID kernel.UUID, rating int, feedback string) (RateOrderCommand, error) {
	cmd := RateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCallerID(callerID),
		cmd.setRating(rating),
	); err != nil {
		return RateOrderCommand{}, err
	}

	cmd.feedback = feedback
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RateOrderCommand) Validate() error {
	return c.guard.Validate(ErrRateOrderCommandIsNotConstructed)
}

// OrderID returns the order to rate.
func (c RateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CallerID returns the rating customer.
func (c RateOrderCommand) CallerID() kernel.UUID {
	return c.callerID
}

// Rating returns the 1 to 5 rating.
func (c RateOrderCommand) Rating() int {
	return c.rating
}

// Feedback returns the optional free-text feedback.
func (c RateOrderCommand) Feedback() string {
	return c.feedback
}

func (c *RateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RateOrderCommand) setCallerID(callerID kernel.UUID) error {
	if err := callerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("caller id", err)
	}

	c.callerID = callerID
	return nil
}

func (c *RateOrderCommand) setRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errs.NewValueIsOutOfRangeError("rating", rating, 1, 5)
	}

	c.rating = rating
	return nil
}
