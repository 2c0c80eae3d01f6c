package commands

import (
	"context"
	"sort"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/task"
	"orderflow/internal/core/ports"
)

// AdvanceDeliveryCommandHandler applies courier progress reports. The
// order's state machine decides legality; the courier's task mirrors the
// accepted phase. Reporting delivered converts the stock reservation into
// a permanent decrement in the same transaction.
type AdvanceDeliveryCommandHandler struct {
	uowFactory OrderStockTaskUoWFactory
	publisher  ports.NotificationPublisher
}

// NewAdvanceDeliveryCommandHandler creates a handler for delivery progress.
func NewAdvanceDeliveryCommandHandler(uowFactory OrderStockTaskUoWFactory, publisher ports.NotificationPublisher) AdvanceDeliveryCommandHandler {
	return AdvanceDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the progress command.
// Returns order.ErrNotAssignedCourier when the reporter is not the bound
// courier and an InvalidTransitionError for phase skips.
func (h *AdvanceDeliveryCommandHandler) Handle(ctx context.Context, cmd AdvanceDeliveryCommand) error {
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

	if err := h.applyPhase(ord, cmd); err != nil {
		return err
	}

	if err := h.mirrorTask(ctx, uow.TaskRepository(), cmd); err != nil {
		return err
	}

	if cmd.Phase() == order.Delivered {
		if err := h.commitStock(ctx, uow.StockRepository(), ord); err != nil {
			return err
		}
	}

	if err := orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	if cmd.Phase() == order.Delivered {
		_ = h.publisher.Publish(ctx, ports.Notification{
			OrderID: ord.ID().String(),
			Event:   "order.delivered",
		})
	}

	return nil
}

func (h *AdvanceDeliveryCommandHandler) applyPhase(ord *order.Order, cmd AdvanceDeliveryCommand) error {
	switch cmd.Phase() {
	case order.EnRouteToStore:
		return ord.MarkEnRouteToStore(cmd.CourierID())
	case order.AtStore:
		return ord.MarkAtStore(cmd.CourierID())
	case order.Picking:
		return ord.MarkPicking(cmd.CourierID())
	case order.EnRouteToCustomer:
		return ord.MarkEnRouteToCustomer(cmd.CourierID())
	default:
		return ord.MarkDelivered(cmd.CourierID())
	}
}

func (h *AdvanceDeliveryCommandHandler) mirrorTask(ctx context.Context, taskRepo ports.TaskRepository, cmd AdvanceDeliveryCommand) error {
	tk, err := taskRepo.GetByOrderID(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if cmd.Phase() == order.Delivered {
		err = tk.CompleteWithProof(cmd.ProofNote(), cmd.ProofPhoto())
	} else {
		err = tk.SetPhase(taskPhaseFor(cmd.Phase()))
	}
	if err != nil {
		return err
	}

	return taskRepo.Update(ctx, tk)
}

// commitStock converts the order's reservation into a quantity decrement
// at fulfillment, locking rows in ascending product id order.
func (h *AdvanceDeliveryCommandHandler) commitStock(ctx context.Context, stockRepo ports.StockRepository, ord *order.Order) error {
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
		if err := record.Commit(qtyByProduct[record.ProductID()]); err != nil {
			return err
		}
	}

	return stockRepo.Update(ctx, stocks...)
}

func taskPhaseFor(phase order.Status) task.Status {
	switch phase {
	case order.EnRouteToStore:
		return task.StatusEnRouteToStore
	case order.AtStore:
		return task.StatusAtStore
	case order.Picking:
		return task.StatusPicking
	default:
		return task.StatusEnRouteToCustomer
	}
}
