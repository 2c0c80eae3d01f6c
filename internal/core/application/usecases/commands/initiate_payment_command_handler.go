package commands

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/payment"
	"orderflow/internal/pkg/errs"
)

// PaymentIntent is the result of initiating a payment: the reference the
// provider will echo back in webhooks and the URL the customer is sent to.
type PaymentIntent struct {
	PaymentID     kernel.UUID
	ProviderTxnID string
	RedirectURL   string
}

// InitiatePaymentCommandHandler opens a payment intent for a prepaid
// order. At most one capturable intent exists per order: a repeated
// initiation returns the open intent instead of creating a second one.
type InitiatePaymentCommandHandler struct {
	uowFactory      OrderPaymentUoWFactory
	redirectBaseURL string
}

// NewInitiatePaymentCommandHandler creates a handler for payment initiation.
// redirectBaseURL is the checkout frontend customers are redirected to.
func NewInitiatePaymentCommandHandler(uowFactory OrderPaymentUoWFactory, redirectBaseURL string) InitiatePaymentCommandHandler {
	return InitiatePaymentCommandHandler{
		uowFactory:      uowFactory,
		redirectBaseURL: redirectBaseURL,
	}
}

// Handle processes the payment initiation command.
// Returns order.ErrAlreadyPaid for settled orders, ErrPaymentNotRequired
// for cash orders and ErrNotOrderOwner for foreign callers.
func (h *InitiatePaymentCommandHandler) Handle(ctx context.Context, cmd InitiatePaymentCommand) (PaymentIntent, error) {
	if err := cmd.Validate(); err != nil {
		return PaymentIntent{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PaymentIntent{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	ord, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return PaymentIntent{}, err
	}

	if !ord.CustomerID().IsEqual(cmd.CallerID()) {
		return PaymentIntent{}, ErrNotOrderOwner
	}
	if !ord.PaymentMethod().IsPrepaid() {
		return PaymentIntent{}, ErrPaymentNotRequired
	}
	if ord.PaymentStatus() == order.PaymentStatusPaid {
		return PaymentIntent{}, order.ErrAlreadyPaid
	}

	paymentRepo := uow.PaymentRepository()

	open, err := paymentRepo.GetCapturableByOrderID(ctx, ord.ID())
	if err == nil {
		return h.intentFor(open), nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return PaymentIntent{}, err
	}

	providerTxnID := fmt.Sprintf("txn_%s", kernel.NewUUID().String())
	intent, err := payment.NewPayment(kernel.NewUUID(), ord.ID(), cmd.Provider(), providerTxnID, ord.Total())
	if err != nil {
		return PaymentIntent{}, err
	}

	if err := paymentRepo.Add(ctx, intent); err != nil {
		return PaymentIntent{}, err
	}

	if ord.Status() == order.Created {
		if err := ord.AwaitPayment(); err != nil {
			return PaymentIntent{}, err
		}
		if err := orderRepo.Update(ctx, ord); err != nil {
			return PaymentIntent{}, err
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return PaymentIntent{}, err
	}

	return h.intentFor(intent), nil
}

func (h *InitiatePaymentCommandHandler) intentFor(p *payment.Payment) PaymentIntent {
	return PaymentIntent{
		PaymentID:     p.ID(),
		ProviderTxnID: p.ProviderTxnID(),
		RedirectURL:   fmt.Sprintf("%s/%s/%s", h.redirectBaseURL, p.Provider(), p.ProviderTxnID()),
	}
}
