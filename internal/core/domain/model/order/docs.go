// Package order contains the order aggregate root and its value objects:
// the lifecycle Status state machine, immutable line-item snapshots, the
// delivery address and the payment method/status enums.
//
// The aggregate is the sole authority on status legality. Coordinators
// (payment reconciliation, cancellation, courier assignment) decide when to
// attempt a transition; the Status transition table decides whether it is
// allowed. Terminal orders (completed, cancelled, refunded) reject every
// further transition.
package order
