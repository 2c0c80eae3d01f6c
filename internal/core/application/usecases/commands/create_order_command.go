package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrOrderLinesAreRequired = errors.New("at least one order line is required")
)

// OrderLine is one requested product with its quantity. Prices are not
// part of the request; the catalog price at creation time is snapshotted
// into the order.
type OrderLine struct {
	ProductID kernel.UUID
	Quantity  int
}

// CreateOrderCommand represents a request to place a new delivery order.
// Carries the client's idempotency key; when the client sent none, a
// server-generated key is used, which protects against double-submits
// within this service but not against a lost response.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	customerID     kernel.UUID
	storeID        kernel.UUID
	lines          []OrderLine
	paymentMethod  order.PaymentMethod
	address        order.Address
	idempotencyKey string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new delivery order.
// Validates identifiers, lines and payment method. An empty idempotency
// key is replaced with a server-generated one.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	storeID kernel.UUID,
	lines []OrderLine,
	paymentMethod order.PaymentMethod,
	address order.Address,
	idempotencyKey string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setStoreID(storeID),
		cmd.setLines(lines),
		cmd.setPaymentMethod(paymentMethod),
		cmd.setAddress(address),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	if idempotencyKey == "" {
		idempotencyKey = kernel.NewUUID().String()
	}
	cmd.idempotencyKey = idempotencyKey

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier the new order will be created under.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the ordering customer's identifier.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// StoreID returns the store the order is placed against.
func (c CreateOrderCommand) StoreID() kernel.UUID {
	return c.storeID
}

// Lines returns the requested product lines.
func (c CreateOrderCommand) Lines() []OrderLine {
	return c.lines
}

// PaymentMethod returns the chosen payment method.
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

// Address returns the delivery address.
func (c CreateOrderCommand) Address() order.Address {
	return c.address
}

// IdempotencyKey returns the key creation is deduplicated under.
func (c CreateOrderCommand) IdempotencyKey() string {
	return c.idempotencyKey
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("customer id", err)
	}

	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setStoreID(storeID kernel.UUID) error {
	if err := storeID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("store id", err)
	}

	c.storeID = storeID
	return nil
}

func (c *CreateOrderCommand) setLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return ErrOrderLinesAreRequired
	}

	for _, line := range lines {
		if err := line.ProductID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("product id", err)
		}
		if line.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError("quantity", line.Quantity, 1, nil)
		}
	}

	c.lines = lines
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(paymentMethod order.PaymentMethod) error {
	if err := paymentMethod.Validate(); err != nil {
		return err
	}

	c.paymentMethod = paymentMethod
	return nil
}

func (c *CreateOrderCommand) setAddress(address order.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.address = address
	return nil
}
