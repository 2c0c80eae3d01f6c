package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// StartAssignmentCommandHandler promotes every confirmed order to
// assigning so couriers can pick it up. One order failing to move does
// not stop the sweep over the rest.
type StartAssignmentCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewStartAssignmentCommandHandler creates a handler for the assignment sweep.
func NewStartAssignmentCommandHandler(uowFactory OrderUoWFactory) StartAssignmentCommandHandler {
	return StartAssignmentCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the sweep command and returns how many orders were
// opened for assignment.
func (h *StartAssignmentCommandHandler) Handle(ctx context.Context, cmd StartAssignmentCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	confirmed, err := orderRepo.GetAllInStatus(ctx, order.Confirmed)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, ord := range confirmed {
		if err := ord.StartAssigning(); err != nil {
			continue
		}
		if err := orderRepo.Update(ctx, ord); err != nil {
			return 0, err
		}
		promoted++
	}

	if promoted == 0 {
		return 0, nil
	}

	return promoted, uow.Commit(ctx)
}
