package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrAdvanceDeliveryCommandIsNotConstructed = errors.New(
	"AdvanceDeliveryCommand must be created via NewAdvanceDeliveryCommand constructor",
)

// AdvanceDeliveryCommand represents a courier reporting progress through
// the delivery phases. The delivered phase carries proof of delivery.
type AdvanceDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	courierID  kernel.UUID
	phase      order.Status
	proofNote  string
	proofPhoto string

	guard guard.ConstructorGuard
}

// NewAdvanceDeliveryCommand creates a command to report a delivery phase.
// The phase must be one of the courier-driven statuses.
func NewAdvanceDeliveryCommand(
	orderID kernel.UUID,
	courierID kernel.UUID,
	phase order.Status,
	proofNote string,
	proofPhoto string,
) (AdvanceDeliveryCommand, error) {
	cmd := AdvanceDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCourierID(courierID),
		cmd.setPhase(phase),
	); err != nil {
		return AdvanceDeliveryCommand{}, err
	}

	cmd.proofNote = proofNote
	cmd.proofPhoto = proofPhoto
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceDeliveryCommandIsNotConstructed)
}

// OrderID returns the order being delivered.
func (c AdvanceDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the reporting courier.
func (c AdvanceDeliveryCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Phase returns the reported phase.
func (c AdvanceDeliveryCommand) Phase() order.Status {
	return c.phase
}

// ProofNote returns the proof-of-delivery note, set on delivered.
func (c AdvanceDeliveryCommand) ProofNote() string {
	return c.proofNote
}

// ProofPhoto returns the proof-of-delivery photo URL, set on delivered.
func (c AdvanceDeliveryCommand) ProofPhoto() string {
	return c.proofPhoto
}

func (c *AdvanceDeliveryCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AdvanceDeliveryCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("courier id", err)
	}

	c.courierID = courierID
	return nil
}

func (c *AdvanceDeliveryCommand) setPhase(phase order.Status) error {
	switch phase {
	case order.EnRouteToStore, order.AtStore, order.Picking, order.EnRouteToCustomer, order.Delivered:
		c.phase = phase
		return nil
	default:
		return errs.NewValueIsInvalidError("phase")
	}
}
