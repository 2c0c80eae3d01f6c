package kernel_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid amount", func(t *testing.T) {
		m, err := kernel.NewMoney(1250)

		require.NoError(t, err)
		assert.Equal(t, int64(1250), m.MinorUnits())
	})

	t.Run("zero is valid", func(t *testing.T) {
		m, err := kernel.NewMoney(0)

		require.NoError(t, err)
		assert.Equal(t, int64(0), m.MinorUnits())
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		_, err := kernel.NewMoney(-1)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a, err := kernel.NewMoney(1000)
	require.NoError(t, err)
	b, err := kernel.NewMoney(250)
	require.NoError(t, err)

	assert.Equal(t, int64(1250), a.Add(b).MinorUnits())
	assert.Equal(t, int64(750), b.MultiplyQty(3).MinorUnits())
}

func TestMoney_String(t *testing.T) {
	m, err := kernel.NewMoney(199)
	require.NoError(t, err)
	assert.Equal(t, "1.99", m.String())

	zero, err := kernel.NewMoney(5)
	require.NoError(t, err)
	assert.Equal(t, "0.05", zero.String())
}
