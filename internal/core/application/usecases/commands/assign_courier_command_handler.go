package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/task"
	"orderflow/internal/core/ports"
)

// AssignCourierCommandHandler binds a courier to an order open for
// assignment, creating the courier's task in the same transaction. The
// order row lock serializes competing couriers: the first one transitions
// assigning to courier_assigned, subsequent attempts fail with
// InvalidTransition.
type AssignCourierCommandHandler struct {
	uowFactory OrderTaskUoWFactory
	publisher  ports.NotificationPublisher
}

// NewAssignCourierCommandHandler creates a handler for courier assignment.
func NewAssignCourierCommandHandler(uowFactory OrderTaskUoWFactory, publisher ports.NotificationPublisher) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the assignment command.
// Returns an InvalidTransitionError unless the order is in assigning.
func (h *AssignCourierCommandHandler) Handle(ctx context.Context, cmd AssignCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	ord, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err := ord.AssignCourier(cmd.CourierID()); err != nil {
		return err
	}

	tk, err := task.NewTask(kernel.NewUUID(), ord.ID(), cmd.CourierID())
	if err != nil {
		return err
	}

	if err := uow.TaskRepository().Add(ctx, tk); err != nil {
		return err
	}

	if err := orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.publisher.Publish(ctx, ports.Notification{
		OrderID: ord.ID().String(),
		Event:   "order.courier_assigned",
		Payload: map[string]string{"courier_id": cmd.CourierID().String()},
	})

	return nil
}
