package task

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrTaskIsNotConstructed is returned when a Task instance was not
	// created through NewTask or RestoreTask.
	ErrTaskIsNotConstructed = errors.New("Task must be created via NewTask or RestoreTask constructor")

	// ErrTaskIsFinished is returned when a phase change is applied to a
	// delivered or cancelled task.
	ErrTaskIsFinished = errors.New("task is already finished")
)

// Status is the courier-side view of the delivery, kept in lockstep with
// the order's delivery phases.
type Status string

const (
	StatusAssigned          Status = "assigned"
	StatusEnRouteToStore    Status = "en_route_to_store"
	StatusAtStore           Status = "at_store"
	StatusPicking           Status = "picking"
	StatusEnRouteToCustomer Status = "en_route_to_customer"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"
)

// Validate checks the status against the supported set.
func (s Status) Validate() error {
	switch s {
	case StatusAssigned, StatusEnRouteToStore, StatusAtStore, StatusPicking,
		StatusEnRouteToCustomer, StatusDelivered, StatusCancelled:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("task status",
			fmt.Errorf("%q is not a supported task status", string(s)))
	}
}

// IsFinished reports whether the task admits no further phase changes.
func (s Status) IsFinished() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Task is a courier's work item for one order. The order aggregate remains
// the authority on which phase changes are legal; the task mirrors the
// phase the courier reported and carries the proof of delivery.
type Task struct {
	id         kernel.UUID
	orderID    kernel.UUID
	courierID  kernel.UUID
	status     Status
	proofNote  string
	proofPhoto string
	assignedAt time.Time
	finishedAt *time.Time

	isConstructed bool
}

// NewTask creates a task binding a courier to an order.
func NewTask(id kernel.UUID, orderID kernel.UUID, courierID kernel.UUID) (*Task, error) {
	t := &Task{
		status:        StatusAssigned,
		assignedAt:    time.Now().UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		t.setID(id),
		t.setOrderID(orderID),
		t.setCourierID(courierID),
	); err != nil {
		return nil, err
	}

	return t, nil
}

// RestoreTask reconstructs a task from persistence.
func RestoreTask(
	id kernel.UUID,
	orderID kernel.UUID,
	courierID kernel.UUID,
	status Status,
	proofNote string,
	proofPhoto string,
	assignedAt time.Time,
	finishedAt *time.Time,
) (*Task, error) {
	t, err := NewTask(id, orderID, courierID)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	t.status = status
	t.proofNote = proofNote
	t.proofPhoto = proofPhoto
	t.assignedAt = assignedAt
	t.finishedAt = finishedAt
	return t, nil
}

// Validate ensures the Task was created through a constructor.
func (t *Task) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTaskIsNotConstructed
	}
	return nil
}

// ID returns the task's unique identifier.
func (t *Task) ID() kernel.UUID {
	return t.id
}

// OrderID returns the order this task delivers.
func (t *Task) OrderID() kernel.UUID {
	return t.orderID
}

// CourierID returns the courier bound to the task.
func (t *Task) CourierID() kernel.UUID {
	return t.courierID
}

// Status returns the courier-reported phase.
func (t *Task) Status() Status {
	return t.status
}

// ProofNote returns the free-text proof of delivery.
func (t *Task) ProofNote() string {
	return t.proofNote
}

// ProofPhoto returns the proof-of-delivery photo URL.
func (t *Task) ProofPhoto() string {
	return t.proofPhoto
}

// AssignedAt returns when the courier was bound.
func (t *Task) AssignedAt() time.Time {
	return t.assignedAt
}

// FinishedAt returns when the task reached a finished phase, if it did.
func (t *Task) FinishedAt() *time.Time {
	return t.finishedAt
}

// SetPhase mirrors a courier-reported phase onto the task. Legality of the
// phase sequence is enforced by the order; the task only refuses changes
// after it finished.
func (t *Task) SetPhase(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if t.status.IsFinished() {
		return fmt.Errorf("%w: status is %s", ErrTaskIsFinished, t.status)
	}

	t.status = status
	if status.IsFinished() {
		now := time.Now().UTC()
		t.finishedAt = &now
	}
	return nil
}

// CompleteWithProof marks the task delivered and records proof of delivery.
func (t *Task) CompleteWithProof(note string, photoURL string) error {
	if err := t.SetPhase(StatusDelivered); err != nil {
		return err
	}

	t.proofNote = note
	t.proofPhoto = photoURL
	return nil
}

// Cancel finishes the task when its order is cancelled.
func (t *Task) Cancel() error {
	return t.SetPhase(StatusCancelled)
}

func (t *Task) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	t.id = id
	return nil
}

func (t *Task) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	t.orderID = orderID
	return nil
}

func (t *Task) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("courier id", err)
	}
	t.courierID = courierID
	return nil
}
