package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// deliveredOrder walks a card order through the full happy path up to
// delivered.
func deliveredOrder(t *testing.T) *order.Order {
	t.Helper()

	ord := cardOrder(t)
	courierID := kernel.NewUUID()
	require.NoError(t, ord.AwaitPayment())
	require.NoError(t, ord.Confirm())
	require.NoError(t, ord.StartAssigning())
	require.NoError(t, ord.AssignCourier(courierID))
	require.NoError(t, ord.MarkEnRouteToStore(courierID))
	require.NoError(t, ord.MarkAtStore(courierID))
	require.NoError(t, ord.MarkPicking(courierID))
	require.NoError(t, ord.MarkEnRouteToCustomer(courierID))
	require.NoError(t, ord.MarkDelivered(courierID))
	return ord
}

func rateUoW(ctx any, ord *order.Order, expectUpdate bool) (*MockUoW, *MockOrderRepository) {
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("GetForUpdate", mock.Anything, ord.ID()).Return(ord, nil).Once()
	if expectUpdate {
		orderRepo.On("Update", mock.Anything, ord).Return(nil).Once()
		uow.On("Commit", ctx).Return(nil).Once()
	}
	return uow, orderRepo
}

func TestRateOrderCommandHandler_Handle_CompletesDeliveredOrder(t *testing.T) {
	ctx := t.Context()
	ord := deliveredOrder(t)

	cmd, err := commands.NewRateOrderCommand(ord.ID(), ord.CustomerID(), 5, "fast and warm")
	require.NoError(t, err)

	uow, orderRepo := rateUoW(ctx, ord, true)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRateOrderCommandHandler(factory)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Completed, ord.Status())
	assert.Equal(t, 5, ord.Rating())
	assert.Equal(t, "fast and warm", ord.Feedback())
	assert.NotNil(t, ord.CompletedAt())

	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestRateOrderCommandHandler_Handle_SecondRatingRejected(t *testing.T) {
	ctx := t.Context()
	ord := deliveredOrder(t)
	require.NoError(t, ord.Rate(4, ""))

	cmd, err := commands.NewRateOrderCommand(ord.ID(), ord.CustomerID(), 5, "")
	require.NoError(t, err)

	uow, _ := rateUoW(ctx, ord, false)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRateOrderCommandHandler(factory)
	err = h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, order.ErrAlreadyRated)
	assert.Equal(t, 4, ord.Rating())
}

func TestRateOrderCommandHandler_Handle_NotDeliveredYet(t *testing.T) {
	ctx := t.Context()
	ord := cardOrder(t)

	cmd, err := commands.NewRateOrderCommand(ord.ID(), ord.CustomerID(), 3, "")
	require.NoError(t, err)

	uow, _ := rateUoW(ctx, ord, false)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRateOrderCommandHandler(factory)
	err = h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, order.ErrNotDelivered)
}

func TestRateOrderCommandHandler_Handle_NotOwner(t *testing.T) {
	ctx := t.Context()
	ord := deliveredOrder(t)

	cmd, err := commands.NewRateOrderCommand(ord.ID(), kernel.NewUUID(), 5, "")
	require.NoError(t, err)

	uow, _ := rateUoW(ctx, ord, false)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRateOrderCommandHandler(factory)
	err = h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, commands.ErrNotOrderOwner)
}

func TestNewRateOrderCommand_RatingOutOfRange(t *testing.T) {
	_, err := commands.NewRateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), 0, "")
	assert.Error(t, err)

	_, err = commands.NewRateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), 6, "")
	assert.Error(t, err)
}
