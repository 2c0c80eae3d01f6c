package kernel

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Money represents a monetary amount in minor currency units (e.g. cents).
// It is a simple newtype rather than a guarded struct: the zero value is a
// legitimate amount, and all arithmetic stays in integer space to avoid
// floating-point rounding in order totals.
type Money int64

// NewMoney creates a Money value from minor units. Negative amounts are
// rejected; the order domain never deals in negative prices or fees.
func NewMoney(minorUnits int64) (Money, error) {
	m := Money(minorUnits)
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}

// Validate rejects negative amounts.
func (m Money) Validate() error {
	if m < 0 {
		return errs.NewValueIsInvalidErrorWithCause("money",
			fmt.Errorf("%d minor units is negative", int64(m)))
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return m + other
}

// MultiplyQty returns the amount for qty units priced at m each.
func (m Money) MultiplyQty(qty int) Money {
	return m * Money(qty)
}

// MinorUnits returns the raw amount in minor units.
func (m Money) MinorUnits() int64 {
	return int64(m)
}

// String renders the amount with two decimal places for logs and display.
func (m Money) String() string {
	units := int64(m)
	if units < 0 {
		return fmt.Sprintf("-%d.%02d", -units/100, -units%100)
	}
	return fmt.Sprintf("%d.%02d", units/100, units%100)
}
