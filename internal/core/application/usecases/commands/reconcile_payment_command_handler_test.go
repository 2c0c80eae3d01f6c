package commands_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/payment"
	"orderflow/internal/pkg/errs"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pendingPaymentFor builds a pending payment intent for the order's total.
func pendingPaymentFor(t *testing.T, ord *order.Order) *payment.Payment {
	t.Helper()

	pmt, err := payment.NewPayment(kernel.NewUUID(), ord.ID(), "stripe", "txn_42", ord.Total())
	require.NoError(t, err)
	return pmt
}

func successCommand(t *testing.T) commands.ReconcilePaymentCommand {
	t.Helper()

	cmd, err := commands.NewReconcilePaymentCommand("stripe", "txn_42", commands.OutcomeSuccess, `{"auth":"A1"}`)
	require.NoError(t, err)
	return cmd
}

// newDedupMiss mocks a first-time delivery: the lookup misses and the
// key is claimed once reconciliation went through.
func newDedupMiss(ctx any) *MockKeyedStore {
	dedup := new(MockKeyedStore)
	dedup.On("Get", ctx, mock.Anything).Return("", errs.NewObjectNotFoundError("key", "webhook")).Once()
	dedup.On("SetIfAbsent", ctx, mock.Anything, "1", mock.Anything).Return(true, nil).Once()
	return dedup
}

func TestReconcilePaymentCommandHandler_Handle_CaptureConfirmsOrder(t *testing.T) {
	ctx := t.Context()
	ord := cardOrder(t)
	require.NoError(t, ord.AwaitPayment())
	pmt := pendingPaymentFor(t, ord)

	orderRepo := new(MockOrderRepository)
	paymentRepo := new(MockPaymentRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("PaymentRepository").Return(paymentRepo).Once(),
		paymentRepo.On("GetByProviderTxnID", mock.Anything, "txn_42").Return(pmt, nil).Once(),
		paymentRepo.On("Update", mock.Anything, pmt).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetForUpdate", mock.Anything, ord.ID()).Return(ord, nil).Once(),
		orderRepo.On("Update", mock.Anything, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(MockNotificationPublisher)
	publisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, newDedupMiss(ctx), publisher, discardLogger())
	require.NoError(t, h.Handle(ctx, successCommand(t)))

	assert.Equal(t, payment.StatusCaptured, pmt.Status())
	assert.NotNil(t, pmt.CapturedAt())
	assert.Equal(t, order.Confirmed, ord.Status())
	assert.Equal(t, order.PaymentStatusPaid, ord.PaymentStatus())
	assert.NotNil(t, ord.ConfirmedAt())

	paymentRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestReconcilePaymentCommandHandler_Handle_FailureMarksPaymentFailed(t *testing.T) {
	ctx := t.Context()
	ord := cardOrder(t)
	require.NoError(t, ord.AwaitPayment())
	pmt := pendingPaymentFor(t, ord)

	cmd, err := commands.NewReconcilePaymentCommand("stripe", "txn_42", commands.OutcomeFailure, `{"decline":"card"}`)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	paymentRepo := new(MockPaymentRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("PaymentRepository").Return(paymentRepo).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	paymentRepo.On("GetByProviderTxnID", mock.Anything, "txn_42").Return(pmt, nil).Once()
	paymentRepo.On("Update", mock.Anything, pmt).Return(nil).Once()
	orderRepo.On("GetForUpdate", mock.Anything, ord.ID()).Return(ord, nil).Once()
	orderRepo.On("Update", mock.Anything, ord).Return(nil).Once()

	factory := new(MockOrderPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(MockNotificationPublisher)

	h := commands.NewReconcilePaymentCommandHandler(factory, newDedupMiss(ctx), publisher, discardLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, payment.StatusFailed, pmt.Status())
	assert.Equal(t, order.PaymentPending, ord.Status())
	assert.Equal(t, order.PaymentStatusFailed, ord.PaymentStatus())
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
}

func TestReconcilePaymentCommandHandler_Handle_UnknownTransactionAcked(t *testing.T) {
	ctx := t.Context()

	paymentRepo := new(MockPaymentRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("PaymentRepository").Return(paymentRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	paymentRepo.On("GetByProviderTxnID", mock.Anything, "txn_42").
		Return(nil, errs.NewObjectNotFoundError("payment", "txn_42")).Once()

	factory := new(MockOrderPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, newDedupMiss(ctx), new(MockNotificationPublisher), discardLogger())
	assert.NoError(t, h.Handle(ctx, successCommand(t)))

	paymentRepo.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestReconcilePaymentCommandHandler_Handle_ReplaySkipped(t *testing.T) {
	ctx := t.Context()
	ord := cardOrder(t)
	pmt := pendingPaymentFor(t, ord)
	require.NoError(t, pmt.Capture("")) // already settled

	paymentRepo := new(MockPaymentRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("PaymentRepository").Return(paymentRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	paymentRepo.On("GetByProviderTxnID", mock.Anything, "txn_42").Return(pmt, nil).Once()

	factory := new(MockOrderPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, newDedupMiss(ctx), new(MockNotificationPublisher), discardLogger())
	assert.NoError(t, h.Handle(ctx, successCommand(t)))

	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestReconcilePaymentCommandHandler_Handle_DuplicateDeliverySkipped(t *testing.T) {
	ctx := t.Context()

	dedup := new(MockKeyedStore)
	dedup.On("Get", ctx, mock.Anything).Return("1", nil).Once()

	factory := new(MockOrderPaymentUoWFactory)

	h := commands.NewReconcilePaymentCommandHandler(factory, dedup, new(MockNotificationPublisher), discardLogger())
	assert.NoError(t, h.Handle(ctx, successCommand(t)))

	factory.AssertNotCalled(t, "Create")
	dedup.AssertNotCalled(t, "SetIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilePaymentCommandHandler_Handle_FailedAttemptLeavesNoDedupClaim(t *testing.T) {
	ctx := t.Context()

	dedup := new(MockKeyedStore)
	dedup.On("Get", ctx, mock.Anything).Return("", errs.NewObjectNotFoundError("key", "webhook")).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(assert.AnError).Once()
	factory := new(MockOrderPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, dedup, new(MockNotificationPublisher), discardLogger())
	require.Error(t, h.Handle(ctx, successCommand(t)))

	// The provider will retry; the key must stay unclaimed so the retry
	// is reconciled instead of being dropped as a duplicate.
	dedup.AssertNotCalled(t, "SetIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilePaymentCommandHandler_Handle_OrphanedCaptureNeverResurrects(t *testing.T) {
	ctx := t.Context()
	ord := cardOrder(t)
	require.NoError(t, ord.Cancel("timeout", commands.ActorSystem))
	pmt := pendingPaymentFor(t, ord)

	orderRepo := new(MockOrderRepository)
	paymentRepo := new(MockPaymentRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("PaymentRepository").Return(paymentRepo).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	paymentRepo.On("GetByProviderTxnID", mock.Anything, "txn_42").Return(pmt, nil).Once()
	paymentRepo.On("Update", mock.Anything, pmt).Return(nil).Once()
	orderRepo.On("GetForUpdate", mock.Anything, ord.ID()).Return(ord, nil).Once()

	factory := new(MockOrderPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(MockNotificationPublisher)

	h := commands.NewReconcilePaymentCommandHandler(factory, newDedupMiss(ctx), publisher, discardLogger())
	require.NoError(t, h.Handle(ctx, successCommand(t)))

	assert.Equal(t, payment.StatusCaptured, pmt.Status())
	assert.Equal(t, order.Cancelled, ord.Status())
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
