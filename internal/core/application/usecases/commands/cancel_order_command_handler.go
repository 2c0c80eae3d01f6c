package commands

import (
	"context"
	"sort"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// CancelOrderCommandHandler handles order cancellation. The status change
// and the stock release run in one transaction, so a cancelled order can
// never keep stock permanently reserved. A task bound to the order is
// finished alongside.
type CancelOrderCommandHandler struct {
	uowFactory OrderStockTaskUoWFactory
	identity   ports.IdentityProvider
	publisher  ports.NotificationPublisher
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(uowFactory OrderStockTaskUoWFactory, identity ports.IdentityProvider, publisher ports.NotificationPublisher) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		publisher:  publisher,
	}
}

// Handle processes the cancellation command.
// Returns order.ErrNotCancellable when the order is already terminal,
// ErrNotOrderOwner when a customer cancels somebody else's order and
// ErrActorNotPermitted when the caller's role does not back the claimed
// actor.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	// The actor comes from the request body. Anything but a customer
	// cancelling their own order must be backed by the caller's account
	// role before the transaction starts.
	if cmd.Actor() != ActorCustomer {
		if err := h.authorizeActor(ctx, cmd); err != nil {
			return err
		}
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

	if cmd.Actor() == ActorCustomer && !ord.CustomerID().IsEqual(cmd.CallerID()) {
		return ErrNotOrderOwner
	}

	// Stock committed at delivery must not be released again.
	releaseReservation := ord.DeliveredAt() == nil

	if err := ord.Cancel(cmd.Reason(), cmd.Actor()); err != nil {
		return err
	}

	if releaseReservation {
		if err := h.releaseStock(ctx, uow.StockRepository(), ord); err != nil {
			return err
		}
	}

	if ord.Courier() != nil {
		if err := h.finishTask(ctx, uow.TaskRepository(), ord.ID()); err != nil {
			return err
		}
	}

	if err := orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.publisher.Publish(ctx, ports.Notification{
		OrderID: ord.ID().String(),
		Event:   "order.cancelled",
		Payload: map[string]string{"reason": cmd.Reason(), "actor": cmd.Actor()},
	})

	return nil
}

// authorizeActor checks store and system cancellations against the
// caller's account. A store actor needs a store or admin role, a system
// actor an admin role.
func (h *CancelOrderCommandHandler) authorizeActor(ctx context.Context, cmd CancelOrderCommand) error {
	caller, err := h.identity.GetUserByID(ctx, cmd.CallerID())
	if err != nil {
		return err
	}
	if !caller.IsActive {
		return ErrActorNotPermitted
	}

	switch cmd.Actor() {
	case ActorStore:
		if caller.Role == ports.RoleStore || caller.Role == ports.RoleAdmin {
			return nil
		}
	case ActorSystem:
		if caller.Role == ports.RoleAdmin {
			return nil
		}
	}
	return ErrActorNotPermitted
}

// releaseStock returns every line's reserved quantity, locking rows in
// ascending product id order like the reservation did.
func (h *CancelOrderCommandHandler) releaseStock(ctx context.Context, stockRepo ports.StockRepository, ord *order.Order) error {
	ids := make([]kernel.UUID, 0, len(ord.Items()))
	qtyByProduct := make(map[kernel.UUID]int, len(ord.Items()))
	for _, item := range ord.Items() {
		if _, seen := qtyByProduct[item.ProductID()]; !seen {
			ids = append(ids, item.ProductID())
		}
		qtyByProduct[item.ProductID()] += item.Quantity()
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	stocks, err := stockRepo.GetForUpdate(ctx, ord.StoreID(), ids)
	if err != nil {
		return err
	}

	for _, record := range stocks {
		if err := record.Release(qtyByProduct[record.ProductID()]); err != nil {
			return err
		}
	}

	return stockRepo.Update(ctx, stocks...)
}

func (h *CancelOrderCommandHandler) finishTask(ctx context.Context, taskRepo ports.TaskRepository, orderID kernel.UUID) error {
	tk, err := taskRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	if tk.Status().IsFinished() {
		return nil
	}

	if err := tk.Cancel(); err != nil {
		return err
	}

	return taskRepo.Update(ctx, tk)
}
