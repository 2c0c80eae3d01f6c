package order

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
)

// ErrInvalidTransition is the sentinel error for illegal order status
// transitions. Use errors.Is against it; the concrete
// InvalidTransitionError carries the from/to pair.
var ErrInvalidTransition = errors.New("invalid order status transition")

// InvalidTransitionError reports an attempted transition that is not in the
// allowed-target set of the current status.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}

// Unwrap returns the sentinel so errors.Is(err, ErrInvalidTransition) holds.
func (e InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Status represents the lifecycle state of a delivery order.
// It implements a state machine with a fixed transition table; Status is the
// sole authority on whether a transition is legal, while the payment,
// cancellation and courier coordinators decide when to attempt one.
//
// Lifecycle (every non-terminal status may also move to cancelled):
//
//	created -> payment_pending -> confirmed -> assigning -> courier_assigned
//	        -> en_route_to_store -> at_store -> picking
//	        -> en_route_to_customer -> delivered -> completed
//
// completed, cancelled and refunded are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status of a non-cash order awaiting payment setup.
	Created

	// PaymentPending indicates a payment intent exists and capture is awaited.
	PaymentPending

	// Confirmed indicates payment settled (or a cash order was placed) and the
	// store may start preparing the order.
	Confirmed

	// Assigning indicates the order is waiting for a courier to be bound.
	Assigning

	// CourierAssigned indicates a courier accepted the order.
	CourierAssigned

	// EnRouteToStore indicates the courier is heading to the store.
	EnRouteToStore

	// AtStore indicates the courier arrived at the store.
	AtStore

	// Picking indicates the order is being picked and packed at the store.
	Picking

	// EnRouteToCustomer indicates the courier picked the order up and is
	// heading to the customer.
	EnRouteToCustomer

	// Delivered indicates the order reached the customer.
	Delivered

	// Completed is the terminal status of a successfully finished order.
	Completed

	// Cancelled is the terminal status of a cancelled order.
	Cancelled

	// Refunded is the terminal status of an order whose payment was returned.
	Refunded
)

// getStatusStrings returns the persistence/display names for every status,
// including Unknown.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:           "unknown",
		Created:           "created",
		PaymentPending:    "payment_pending",
		Confirmed:         "confirmed",
		Assigning:         "assigning",
		CourierAssigned:   "courier_assigned",
		EnRouteToStore:    "en_route_to_store",
		AtStore:           "at_store",
		Picking:           "picking",
		EnRouteToCustomer: "en_route_to_customer",
		Delivered:         "delivered",
		Completed:         "completed",
		Cancelled:         "cancelled",
		Refunded:          "refunded",
	}
}

// getAllowedTargets returns the transition table: for each source status,
// the set of statuses it may legally move to. Terminal statuses have no
// targets at all.
func getAllowedTargets() map[Status][]Status {
	return map[Status][]Status{
		Created:           {PaymentPending, Cancelled},
		PaymentPending:    {Confirmed, Cancelled},
		Confirmed:         {Assigning, Cancelled},
		Assigning:         {CourierAssigned, Cancelled},
		CourierAssigned:   {EnRouteToStore, Cancelled},
		EnRouteToStore:    {AtStore, Cancelled},
		AtStore:           {Picking, Cancelled},
		Picking:           {EnRouteToCustomer, Cancelled},
		EnRouteToCustomer: {Delivered, Cancelled},
		Delivered:         {Completed, Cancelled},
		Completed:         {},
		Cancelled:         {},
		Refunded:          {},
	}
}

// StatusFromString parses a persistence/display name back into a Status.
// Unknown names produce an error.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid order status", s))
}

// Validate checks that the Status is one of the defined lifecycle states.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getAllowedTargets()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", int(s)))
	}
	return nil
}

// String returns the snake_case name of the status. It implements
// fmt.Stringer and is safe to call on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	targets, ok := getAllowedTargets()[s]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether target is in the allowed-target set of s
// without performing the transition.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range getAllowedTargets()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo returns target when the move is legal and an
// InvalidTransitionError naming the (from, to) pair otherwise.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(target) {
		return Unknown, InvalidTransitionError{From: s, To: target}
	}
	return target, nil
}
