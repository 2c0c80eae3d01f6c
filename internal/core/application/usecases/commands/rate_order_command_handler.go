package commands

import (
	"context"
)

// RateOrderCommandHandler handles post-delivery order rating.
type RateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewRateOrderCommandHandler creates a handler for order rating.
func NewRateOrderCommandHandler(uowFactory OrderUoWFactory) RateOrderCommandHandler {
	return RateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the rating command.
// Returns order.ErrNotDelivered before delivery, order.ErrAlreadyRated on
// a second rating and ErrNotOrderOwner for foreign callers.
func (h *RateOrderCommandHandler) Handle(ctx context.Context, cmd RateOrderCommand) error {
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

	if !ord.CustomerID().IsEqual(cmd.CallerID()) {
		return ErrNotOrderOwner
	}

	if err := ord.Rate(cmd.Rating(), cmd.Feedback()); err != nil {
		return err
	}

	if err := orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
