package payment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/payment"
)

func newPendingPayment(t *testing.T) *payment.Payment {
	t.Helper()

	amount, err := kernel.NewMoney(12500)
	require.NoError(t, err)

	p, err := payment.NewPayment(
		kernel.NewUUID(),
		kernel.NewUUID(),
		"stripe",
		"txn_001",
		amount,
	)
	require.NoError(t, err)
	return p
}

func TestNewPayment_Success(t *testing.T) {
	p := newPendingPayment(t)

	assert.NoError(t, p.Validate())
	assert.Equal(t, payment.StatusPending, p.Status())
	assert.Equal(t, "stripe", p.Provider())
	assert.Equal(t, "txn_001", p.ProviderTxnID())
	assert.True(t, p.IsCapturable())
	assert.Nil(t, p.CapturedAt())
}

func TestNewPayment_RequiresProviderAndTxnID(t *testing.T) {
	amount, err := kernel.NewMoney(100)
	require.NoError(t, err)

	_, err = payment.NewPayment(kernel.NewUUID(), kernel.NewUUID(), "", "txn_001", amount)
	assert.Error(t, err)

	_, err = payment.NewPayment(kernel.NewUUID(), kernel.NewUUID(), "stripe", "", amount)
	assert.Error(t, err)
}

func TestPayment_Capture(t *testing.T) {
	p := newPendingPayment(t)

	err := p.Capture(`{"auth_code":"A1"}`)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusCaptured, p.Status())
	assert.False(t, p.IsCapturable())
	require.NotNil(t, p.CapturedAt())
	assert.WithinDuration(t, time.Now().UTC(), *p.CapturedAt(), time.Second)
	assert.Equal(t, `{"auth_code":"A1"}`, p.Metadata())
}

func TestPayment_Capture_ReplayRejected(t *testing.T) {
	p := newPendingPayment(t)
	require.NoError(t, p.Capture(""))

	err := p.Capture("")
	assert.ErrorIs(t, err, payment.ErrPaymentAlreadySettled)

	err = p.Fail("")
	assert.ErrorIs(t, err, payment.ErrPaymentAlreadySettled)
}

func TestPayment_Fail(t *testing.T) {
	p := newPendingPayment(t)

	err := p.Fail(`{"decline_code":"insufficient_funds"}`)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusFailed, p.Status())
	assert.False(t, p.IsCapturable())
	assert.Nil(t, p.CapturedAt())
}

func TestPayment_Refund(t *testing.T) {
	p := newPendingPayment(t)

	err := p.Refund()
	assert.ErrorIs(t, err, payment.ErrPaymentAlreadySettled)

	require.NoError(t, p.Capture(""))
	require.NoError(t, p.Refund())
	assert.Equal(t, payment.StatusRefunded, p.Status())
}

func TestRestorePayment(t *testing.T) {
	amount, err := kernel.NewMoney(999)
	require.NoError(t, err)

	capturedAt := time.Now().UTC().Add(-time.Hour)
	p, err := payment.RestorePayment(
		kernel.NewUUID(),
		kernel.NewUUID(),
		"adyen",
		"txn_777",
		amount,
		payment.StatusCaptured,
		&capturedAt,
		`{"ok":true}`,
	)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusCaptured, p.Status())
	assert.Equal(t, &capturedAt, p.CapturedAt())
	assert.False(t, p.IsCapturable())
}

func TestRestorePayment_RejectsUnknownStatus(t *testing.T) {
	amount, err := kernel.NewMoney(1)
	require.NoError(t, err)

	_, err = payment.RestorePayment(
		kernel.NewUUID(), kernel.NewUUID(), "stripe", "txn_1",
		amount, payment.Status("voided"), nil, "",
	)
	assert.Error(t, err)
}
