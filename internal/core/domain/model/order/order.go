package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrNotCancellable is returned when cancellation is requested for an
	// order already in a terminal status.
	ErrNotCancellable = errors.New("order is not cancellable")

	// ErrNotAssignedCourier is returned when a courier-driven action comes
	// from a courier that is not bound to the order.
	ErrNotAssignedCourier = errors.New("courier is not assigned to this order")

	// ErrAlreadyPaid is returned when a payment intent is requested for an
	// order whose payment already settled.
	ErrAlreadyPaid = errors.New("order is already paid")

	// ErrNotDelivered is returned when a rating is submitted before the
	// order reached the customer.
	ErrNotDelivered = errors.New("order is not delivered yet")

	// ErrAlreadyRated is returned when a rating is submitted twice.
	ErrAlreadyRated = errors.New("order is already rated")
)

// Order is the aggregate root coordinating the delivery lifecycle from
// placement to completion or cancellation.
//
// Invariants:
//   - total = subtotal + delivery fee, fixed at creation
//   - items are an immutable snapshot taken at creation
//   - status only moves along the Status transition table
//   - terminal statuses (completed, cancelled, refunded) never change again
//   - the idempotency key is unique across all orders (enforced by storage)
//
// Orders are never physically deleted; cancelled and completed orders are
// retained for audit.
type Order struct {
	id             kernel.UUID
	customerID     kernel.UUID
	storeID        kernel.UUID
	items          []Item
	subtotal       kernel.Money
	deliveryFee    kernel.Money
	total          kernel.Money
	paymentMethod  PaymentMethod
	paymentStatus  PaymentStatus
	status         Status
	courierID      *kernel.UUID
	address        Address
	idempotencyKey string

	confirmedAt *time.Time
	assignedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	completedAt *time.Time
	cancelledAt *time.Time

	cancelReason string
	cancelledBy  string

	rating   int
	feedback string

	isConstructed bool
}

// NewOrder creates a new Order with an immutable item snapshot and computed
// totals. Cash orders bypass payment_pending and enter directly at
// confirmed; prepaid orders start at created and await a payment intent.
//
// The idempotency key must be non-empty; callers that received none from
// the client generate one server-side before calling NewOrder.
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	storeID kernel.UUID,
	items []Item,
	deliveryFee kernel.Money,
	paymentMethod PaymentMethod,
	address Address,
	idempotencyKey string,
) (*Order, error) {
	o := &Order{
		paymentStatus: PaymentStatusPending,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setStoreID(storeID),
		o.setItems(items),
		o.setDeliveryFee(deliveryFee),
		o.setPaymentMethod(paymentMethod),
		o.setAddress(address),
		o.setIdempotencyKey(idempotencyKey),
	); err != nil {
		return nil, err
	}

	o.subtotal = 0
	for _, item := range o.items {
		o.subtotal = o.subtotal.Add(item.Total())
	}
	o.total = o.subtotal.Add(o.deliveryFee)

	if paymentMethod.IsPrepaid() {
		o.status = Created
	} else {
		now := time.Now().UTC()
		o.status = Confirmed
		o.confirmedAt = &now
	}

	return o, nil
}

// RestoreOrderParams carries the persisted state of an order for
// reconstruction by the repository layer.
type RestoreOrderParams struct {
	ID             kernel.UUID
	CustomerID     kernel.UUID
	StoreID        kernel.UUID
	Items          []Item
	Subtotal       kernel.Money
	DeliveryFee    kernel.Money
	Total          kernel.Money
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	Status         Status
	CourierID      *kernel.UUID
	Address        Address
	IdempotencyKey string
	ConfirmedAt    *time.Time
	AssignedAt     *time.Time
	PickedUpAt     *time.Time
	DeliveredAt    *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string
	CancelledBy    string
	Rating         int
	Feedback       string
}

// RestoreOrder reconstructs an order from persistence without reapplying
// creation-time rules (totals and status are restored as stored).
func RestoreOrder(p RestoreOrderParams) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setCustomerID(p.CustomerID),
		o.setStoreID(p.StoreID),
		o.setItems(p.Items),
		o.setDeliveryFee(p.DeliveryFee),
		o.setPaymentMethod(p.PaymentMethod),
		o.setAddress(p.Address),
		o.setIdempotencyKey(p.IdempotencyKey),
		p.Status.Validate(),
		p.PaymentStatus.Validate(),
		p.Subtotal.Validate(),
		p.Total.Validate(),
	); err != nil {
		return nil, err
	}

	if p.CourierID != nil {
		if err := p.CourierID.Validate(); err != nil {
			return nil, err
		}
		courierID := *p.CourierID
		o.courierID = &courierID
	}

	o.subtotal = p.Subtotal
	o.total = p.Total
	o.paymentStatus = p.PaymentStatus
	o.status = p.Status
	o.confirmedAt = p.ConfirmedAt
	o.assignedAt = p.AssignedAt
	o.pickedUpAt = p.PickedUpAt
	o.deliveredAt = p.DeliveredAt
	o.completedAt = p.CompletedAt
	o.cancelledAt = p.CancelledAt
	o.cancelReason = p.CancelReason
	o.cancelledBy = p.CancelledBy
	o.rating = p.Rating
	o.feedback = p.Feedback

	return o, nil
}

// Validate ensures the Order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the placing customer's identifier.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// StoreID returns the fulfilling store's identifier.
func (o *Order) StoreID() kernel.UUID {
	return o.storeID
}

// Items returns a copy of the immutable line-item snapshot.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// Subtotal returns the sum of all line totals at order time.
func (o *Order) Subtotal() kernel.Money {
	return o.subtotal
}

// DeliveryFee returns the delivery fee charged at order time.
func (o *Order) DeliveryFee() kernel.Money {
	return o.deliveryFee
}

// Total returns subtotal plus delivery fee.
func (o *Order) Total() kernel.Money {
	return o.total
}

// PaymentMethod returns how the order is paid.
func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

// PaymentStatus returns the order-level settlement state.
func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// Courier returns the assigned courier's ID, or nil when unassigned.
func (o *Order) Courier() *kernel.UUID {
	return o.courierID
}

// Address returns the delivery address.
func (o *Order) Address() Address {
	return o.address
}

// IdempotencyKey returns the creation idempotency key.
func (o *Order) IdempotencyKey() string {
	return o.idempotencyKey
}

// ConfirmedAt returns when the order was confirmed, if it was.
func (o *Order) ConfirmedAt() *time.Time { return o.confirmedAt }

// AssignedAt returns when a courier was assigned, if one was.
func (o *Order) AssignedAt() *time.Time { return o.assignedAt }

// PickedUpAt returns when the courier picked the order up, if they did.
func (o *Order) PickedUpAt() *time.Time { return o.pickedUpAt }

// DeliveredAt returns when the order was delivered, if it was.
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }

// CompletedAt returns when the order was completed, if it was.
func (o *Order) CompletedAt() *time.Time { return o.completedAt }

// CancelledAt returns when the order was cancelled, if it was.
func (o *Order) CancelledAt() *time.Time { return o.cancelledAt }

// CancelReason returns the recorded cancellation reason.
func (o *Order) CancelReason() string { return o.cancelReason }

// CancelledBy returns the actor that cancelled the order.
func (o *Order) CancelledBy() string { return o.cancelledBy }

// Rating returns the post-delivery rating, 0 when unrated.
func (o *Order) Rating() int { return o.rating }

// Feedback returns the post-delivery feedback text.
func (o *Order) Feedback() string { return o.feedback }

// AwaitPayment moves a prepaid order from created to payment_pending once a
// payment intent exists.
func (o *Order) AwaitPayment() error {
	newStatus, err := o.status.TransitionTo(PaymentPending)
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// Confirm moves the order to confirmed and stamps confirmed_at. Invoked by
// payment reconciliation after a successful capture.
func (o *Order) Confirm() error {
	newStatus, err := o.status.TransitionTo(Confirmed)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	o.status = newStatus
	o.confirmedAt = &now
	return nil
}

// MarkPaid records settlement at the order level. It does not change the
// lifecycle status; reconciliation pairs it with Confirm.
func (o *Order) MarkPaid() {
	o.paymentStatus = PaymentStatusPaid
}

// MarkPaymentFailed records a failed capture at the order level, leaving
// the lifecycle status unchanged so payment can be retried.
func (o *Order) MarkPaymentFailed() {
	o.paymentStatus = PaymentStatusFailed
}

// StartAssigning opens the order for courier assignment.
func (o *Order) StartAssigning() error {
	newStatus, err := o.status.TransitionTo(Assigning)
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// AssignCourier binds a courier to the order and stamps assigned_at.
// Only legal while the order is in assigning.
func (o *Order) AssignCourier(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(CourierAssigned)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	o.status = newStatus
	o.courierID = &courierID
	o.assignedAt = &now
	return nil
}

// MarkEnRouteToStore records that the assigned courier is heading to the store.
func (o *Order) MarkEnRouteToStore(courierID kernel.UUID) error {
	return o.advance(courierID, EnRouteToStore)
}

// MarkAtStore records that the assigned courier arrived at the store.
func (o *Order) MarkAtStore(courierID kernel.UUID) error {
	return o.advance(courierID, AtStore)
}

// MarkPicking records that the order is being picked at the store.
func (o *Order) MarkPicking(courierID kernel.UUID) error {
	return o.advance(courierID, Picking)
}

// MarkEnRouteToCustomer records pickup and stamps picked_up_at.
func (o *Order) MarkEnRouteToCustomer(courierID kernel.UUID) error {
	if err := o.advance(courierID, EnRouteToCustomer); err != nil {
		return err
	}
	now := time.Now().UTC()
	o.pickedUpAt = &now
	return nil
}

// MarkDelivered records delivery to the customer and stamps delivered_at.
// Cash orders settle at the door, so delivery also marks them paid.
func (o *Order) MarkDelivered(courierID kernel.UUID) error {
	if err := o.advance(courierID, Delivered); err != nil {
		return err
	}
	now := time.Now().UTC()
	o.deliveredAt = &now
	if !o.paymentMethod.IsPrepaid() {
		o.paymentStatus = PaymentStatusPaid
	}
	return nil
}

// Complete finishes a delivered order and stamps completed_at.
func (o *Order) Complete() error {
	newStatus, err := o.status.TransitionTo(Completed)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	o.status = newStatus
	o.completedAt = &now
	return nil
}

// Cancel moves the order to cancelled recording the reason and the actor,
// and stamps cancelled_at. Fails with ErrNotCancellable for orders already
// in a terminal status. Stock release is the caller's responsibility and
// must share the order update's unit of work.
func (o *Order) Cancel(reason string, actor string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("cancel reason")
	}
	if actor == "" {
		return errs.NewValueIsRequiredError("cancel actor")
	}
	if o.status.IsTerminal() {
		return fmt.Errorf("%w: status is %s", ErrNotCancellable, o.status)
	}

	newStatus, err := o.status.TransitionTo(Cancelled)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	o.status = newStatus
	o.cancelledAt = &now
	o.cancelReason = reason
	o.cancelledBy = actor
	return nil
}

// Rate records the post-delivery rating and feedback. Only delivered or
// completed orders can be rated, each order at most once; rating a
// delivered order also completes it.
func (o *Order) Rate(rating int, feedback string) error {
	if o.status != Delivered && o.status != Completed {
		return fmt.Errorf("%w: status is %s", ErrNotDelivered, o.status)
	}
	if o.rating != 0 {
		return ErrAlreadyRated
	}
	if rating < 1 || rating > 5 {
		return errs.NewValueIsOutOfRangeError("rating", rating, 1, 5)
	}

	if o.status == Delivered {
		if err := o.Complete(); err != nil {
			return err
		}
	}

	o.rating = rating
	o.feedback = feedback
	return nil
}

// ensureCourier verifies the acting courier is the one bound to the order.
func (o *Order) ensureCourier(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.courierID == nil || !o.courierID.IsEqual(courierID) {
		return ErrNotAssignedCourier
	}
	return nil
}

func (o *Order) advance(courierID kernel.UUID, target Status) error {
	if err := o.ensureCourier(courierID); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("customer id", err)
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setStoreID(storeID kernel.UUID) error {
	if err := storeID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("store id", err)
	}
	o.storeID = storeID
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("order items")
	}

	snapshot := make([]Item, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		snapshot[i] = item
	}

	o.items = snapshot
	return nil
}

func (o *Order) setDeliveryFee(deliveryFee kernel.Money) error {
	if err := deliveryFee.Validate(); err != nil {
		return err
	}
	o.deliveryFee = deliveryFee
	return nil
}

func (o *Order) setPaymentMethod(paymentMethod PaymentMethod) error {
	if err := paymentMethod.Validate(); err != nil {
		return err
	}
	o.paymentMethod = paymentMethod
	return nil
}

func (o *Order) setAddress(address Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.address = address
	return nil
}

func (o *Order) setIdempotencyKey(idempotencyKey string) error {
	if idempotencyKey == "" {
		return errs.NewValueIsRequiredError("idempotency key")
	}
	o.idempotencyKey = idempotencyKey
	return nil
}
