package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrReconcilePaymentCommandIsNotConstructed = errors.New(
	"ReconcilePaymentCommand must be created via NewReconcilePaymentCommand constructor",
)

// Webhook outcomes a provider can report for a transaction.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ReconcilePaymentCommand represents a verified provider webhook to apply
// to the payment and order state. The webhook adapter authenticates the
// payload before building this command; the command itself trusts it.
type ReconcilePaymentCommand struct { //nolint:recvcheck //using for validation
	provider      string
	providerTxnID string
	outcome       string
	metadata      string

	guard guard.ConstructorGuard
}

// NewReconcilePaymentCommand creates a command to apply a provider webhook.
func NewReconcilePaymentCommand(provider string, providerTxnID string, outcome string, metadata string) (ReconcilePaymentCommand, error) {
	cmd := ReconcilePaymentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setProvider(provider),
		cmd.setProviderTxnID(providerTxnID),
		cmd.setOutcome(outcome),
	); err != nil {
		return ReconcilePaymentCommand{}, err
	}

	cmd.metadata = metadata
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReconcilePaymentCommand) Validate() error {
	return c.guard.Validate(ErrReconcilePaymentCommandIsNotConstructed)
}

// Provider returns the reporting provider.
func (c ReconcilePaymentCommand) Provider() string {
	return c.provider
}

// ProviderTxnID returns the provider's transaction reference.
func (c ReconcilePaymentCommand) ProviderTxnID() string {
	return c.providerTxnID
}

// Outcome returns the reported outcome: success or failure.
func (c ReconcilePaymentCommand) Outcome() string {
	return c.outcome
}

// Metadata returns the raw provider payload recorded on the payment.
func (c ReconcilePaymentCommand) Metadata() string {
	return c.metadata
}

func (c *ReconcilePaymentCommand) setProvider(provider string) error {
	if provider == "" {
		return errs.NewValueIsRequiredError("provider")
	}

	c.provider = provider
	return nil
}

func (c *ReconcilePaymentCommand) setProviderTxnID(providerTxnID string) error {
	if providerTxnID == "" {
		return errs.NewValueIsRequiredError("provider transaction id")
	}

	c.providerTxnID = providerTxnID
	return nil
}

func (c *ReconcilePaymentCommand) setOutcome(outcome string) error {
	switch outcome {
	case OutcomeSuccess, OutcomeFailure:
		c.outcome = outcome
		return nil
	default:
		return errs.NewValueIsInvalidError("outcome")
	}
}
