package commands

import (
	"context"
	"errors"
	"sort"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/stock"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// CreateOrderCommandHandler handles the business logic for placing orders.
// Within one transaction it checks the idempotency key, reserves stock for
// every line and inserts the order, so a failed creation leaves nothing
// reserved behind.
//
// Two creators racing on the same key both pass the in-transaction check;
// the unique constraint on the key rejects the loser at insert, and the
// handler resolves the race by re-reading the winner. A loser that fails
// earlier, because the winner drained the stock it also wanted, is
// resolved the same way.
type CreateOrderCommandHandler struct {
	uowFactory  OrderStockUoWFactory
	catalog     ports.ProductCatalog
	identity    ports.IdentityProvider
	publisher   ports.NotificationPublisher
	deliveryFee kernel.Money
}

// NewCreateOrderCommandHandler creates a handler for order placement.
func NewCreateOrderCommandHandler(
	uowFactory OrderStockUoWFactory,
	catalog ports.ProductCatalog,
	identity ports.IdentityProvider,
	publisher ports.NotificationPublisher,
	deliveryFee kernel.Money,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:  uowFactory,
		catalog:     catalog,
		identity:    identity,
		publisher:   publisher,
		deliveryFee: deliveryFee,
	}
}

// Handle processes the order placement command and returns the resulting
// order. When the idempotency key was already used, the previously created
// order is returned and no stock is touched.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	customer, err := h.identity.GetUserByID(ctx, cmd.CustomerID())
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, errs.NewValueIsInvalidError("customer id")
	}

	items, err := h.snapshotItems(ctx, cmd)
	if err != nil {
		return nil, err
	}

	result, inserted, err := h.createInTx(ctx, cmd, items)
	if errors.Is(err, ports.ErrAlreadyExists) {
		// Lost the insert race; the winner's row is committed by now.
		return h.getByKey(ctx, cmd.IdempotencyKey())
	}
	if errors.Is(err, stock.ErrInsufficientStock) {
		// A racer on the same key may have drained the stock before this
		// transaction got the row locks. If an order exists under the key
		// the request already succeeded; otherwise the shortage is real.
		if existing, lookupErr := h.getByKey(ctx, cmd.IdempotencyKey()); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if inserted {
		_ = h.publisher.Publish(ctx, ports.Notification{
			OrderID: result.ID().String(),
			Event:   "order.created",
		})
	}

	return result, nil
}

// snapshotItems resolves the requested lines against the catalog, fixing
// each line's unit price at the current catalog price.
func (h *CreateOrderCommandHandler) snapshotItems(ctx context.Context, cmd CreateOrderCommand) ([]order.Item, error) {
	ids := make([]kernel.UUID, 0, len(cmd.Lines()))
	for _, line := range cmd.Lines() {
		ids = append(ids, line.ProductID)
	}

	products, err := h.catalog.GetActiveProductsByIDs(ctx, cmd.StoreID(), ids)
	if err != nil {
		return nil, err
	}

	prices := make(map[kernel.UUID]kernel.Money, len(products))
	for _, product := range products {
		prices[product.ID] = product.Price
	}

	items := make([]order.Item, 0, len(cmd.Lines()))
	for _, line := range cmd.Lines() {
		price, ok := prices[line.ProductID]
		if !ok {
			return nil, errs.NewObjectNotFoundError("product", line.ProductID.String())
		}

		item, err := order.NewItem(line.ProductID, line.Quantity, price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (h *CreateOrderCommandHandler) createInTx(ctx context.Context, cmd CreateOrderCommand, items []order.Item) (*order.Order, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	existing, err := orderRepo.GetByIdempotencyKey(ctx, cmd.IdempotencyKey())
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, false, err
	}

	if err := h.reserveStock(ctx, uow.StockRepository(), cmd); err != nil {
		return nil, false, err
	}

	newOrder, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.StoreID(),
		items,
		h.deliveryFee,
		cmd.PaymentMethod(),
		cmd.Address(),
		cmd.IdempotencyKey(),
	)
	if err != nil {
		return nil, false, err
	}

	if err := orderRepo.Add(ctx, newOrder); err != nil {
		return nil, false, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, false, err
	}

	return newOrder, true, nil
}

// reserveStock locks and reserves stock for every line. Rows are fetched
// in ascending product id order; a single unsatisfiable line fails the
// whole reservation.
func (h *CreateOrderCommandHandler) reserveStock(ctx context.Context, stockRepo ports.StockRepository, cmd CreateOrderCommand) error {
	lines := cmd.Lines()
	ids := make([]kernel.UUID, 0, len(lines))
	qtyByProduct := make(map[kernel.UUID]int, len(lines))
	for _, line := range lines {
		if _, seen := qtyByProduct[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		qtyByProduct[line.ProductID] += line.Quantity
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	stocks, err := stockRepo.GetForUpdate(ctx, cmd.StoreID(), ids)
	if err != nil {
		return err
	}

	for _, record := range stocks {
		if err := record.Reserve(qtyByProduct[record.ProductID()]); err != nil {
			return err
		}
	}

	return stockRepo.Update(ctx, stocks...)
}

func (h *CreateOrderCommandHandler) getByKey(ctx context.Context, key string) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().GetByIdempotencyKey(ctx, key)
}
