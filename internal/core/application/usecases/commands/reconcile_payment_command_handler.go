package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// webhookDedupTTL bounds how long a processed webhook delivery is
// remembered in the keyed store. The durable dedup authority is the
// payment row itself; the store only short-circuits hot replays.
const webhookDedupTTL = 24 * time.Hour

// ReconcilePaymentCommandHandler applies authenticated provider webhooks
// to payment and order state. It is deliberately forgiving: replays are
// no-ops, unknown transaction ids are logged and swallowed so the
// provider stops retrying, and a capture landing on an already terminal
// order records the payment without resurrecting the order.
type ReconcilePaymentCommandHandler struct {
	uowFactory OrderPaymentUoWFactory
	dedup      ports.KeyedStore
	publisher  ports.NotificationPublisher
	log        *slog.Logger
}

// NewReconcilePaymentCommandHandler creates a handler for webhook reconciliation.
func NewReconcilePaymentCommandHandler(
	uowFactory OrderPaymentUoWFactory,
	dedup ports.KeyedStore,
	publisher ports.NotificationPublisher,
	log *slog.Logger,
) ReconcilePaymentCommandHandler {
	return ReconcilePaymentCommandHandler{
		uowFactory: uowFactory,
		dedup:      dedup,
		publisher:  publisher,
		log:        log.With("component", "payment-reconciliation"),
	}
}

// Handle processes the reconciliation command. A nil return means the
// webhook may be acknowledged; the only errors surfaced are internal
// failures the provider should retry on.
func (h *ReconcilePaymentCommandHandler) Handle(ctx context.Context, cmd ReconcilePaymentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	dedupKey := fmt.Sprintf("webhook:%s:%s:%s", cmd.Provider(), cmd.ProviderTxnID(), cmd.Outcome())
	if _, err := h.dedup.Get(ctx, dedupKey); err == nil {
		h.log.Info("duplicate webhook delivery skipped", "txn_id", cmd.ProviderTxnID())
		return nil
	} else if !errors.Is(err, errs.ErrObjectNotFound) {
		// The store being down must not block reconciliation; the
		// payment row still dedups below.
		h.log.Warn("webhook dedup store unavailable", "error", err)
	}

	confirmedOrderID, err := h.reconcileInTx(ctx, cmd)
	if err != nil {
		return err
	}

	// The key is claimed only after the transaction committed. A failed
	// attempt leaves no claim behind, so the provider's retry is
	// processed instead of being swallowed as a duplicate.
	if _, err := h.dedup.SetIfAbsent(ctx, dedupKey, "1", webhookDedupTTL); err != nil {
		h.log.Warn("webhook dedup store unavailable", "error", err)
	}

	if confirmedOrderID != "" {
		_ = h.publisher.Publish(ctx, ports.Notification{
			OrderID: confirmedOrderID,
			Event:   "order.confirmed",
		})
	}

	return nil
}

func (h *ReconcilePaymentCommandHandler) reconcileInTx(ctx context.Context, cmd ReconcilePaymentCommand) (string, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	paymentRepo := uow.PaymentRepository()

	pmt, err := paymentRepo.GetByProviderTxnID(ctx, cmd.ProviderTxnID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.log.Warn("webhook for unknown transaction acknowledged",
			"provider", cmd.Provider(), "txn_id", cmd.ProviderTxnID())
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if !pmt.IsCapturable() {
		h.log.Info("webhook replay for settled payment skipped",
			"txn_id", cmd.ProviderTxnID(), "status", string(pmt.Status()))
		return "", nil
	}

	if cmd.Outcome() == OutcomeFailure {
		if err := pmt.Fail(cmd.Metadata()); err != nil {
			return "", err
		}
		if err := paymentRepo.Update(ctx, pmt); err != nil {
			return "", err
		}

		orderRepo := uow.OrderRepository()
		ord, err := orderRepo.GetForUpdate(ctx, pmt.OrderID())
		if err != nil {
			return "", err
		}
		if !ord.Status().IsTerminal() {
			// Lifecycle status stays put so payment can be retried; only
			// the order's payment status records the decline.
			ord.MarkPaymentFailed()
			if err := orderRepo.Update(ctx, ord); err != nil {
				return "", err
			}
		}
		return "", uow.Commit(ctx)
	}

	if err := pmt.Capture(cmd.Metadata()); err != nil {
		return "", err
	}
	if err := paymentRepo.Update(ctx, pmt); err != nil {
		return "", err
	}

	orderRepo := uow.OrderRepository()
	ord, err := orderRepo.GetForUpdate(ctx, pmt.OrderID())
	if err != nil {
		return "", err
	}

	if ord.Status().IsTerminal() {
		// Late capture for a dead order: keep the money trail, never
		// resurrect the order. Support resolves the refund manually.
		h.log.Warn("orphaned capture recorded for terminal order",
			"order_id", ord.ID().String(), "txn_id", cmd.ProviderTxnID(),
			"order_status", ord.Status().String())
		return "", uow.Commit(ctx)
	}

	// A capture can arrive before the customer returned from checkout.
	if ord.Status() == order.Created {
		if err := ord.AwaitPayment(); err != nil {
			return "", err
		}
	}
	if err := ord.Confirm(); err != nil {
		return "", err
	}
	ord.MarkPaid()

	if err := orderRepo.Update(ctx, ord); err != nil {
		return "", err
	}

	if err := uow.Commit(ctx); err != nil {
		return "", err
	}

	return ord.ID().String(), nil
}
