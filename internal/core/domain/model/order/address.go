package order

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when an Address was not created via NewAddress.
var ErrAddressIsNotConstructed = errors.New("Address must be created via NewAddress constructor")

// Address is the delivery destination: validated geographic coordinates plus
// free-form text for the courier (street, building, door code).
type Address struct { //nolint:recvcheck //using for validation
	location kernel.Location
	text     string

	guard guard.ConstructorGuard
}

// NewAddress creates a delivery address. The location must be constructed
// and the text must not be empty.
func NewAddress(location kernel.Location, text string) (Address, error) {
	address := Address{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		address.setLocation(location),
		address.setText(text),
	); err != nil {
		return Address{}, err
	}

	return address, nil
}

// Validate ensures the Address was created via NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Location returns the delivery coordinates.
func (a Address) Location() kernel.Location {
	return a.location
}

// Text returns the free-form address text.
func (a Address) Text() string {
	return a.text
}

func (a *Address) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	a.location = location
	return nil
}

func (a *Address) setText(text string) error {
	if text == "" {
		return errs.NewValueIsRequiredError("address text")
	}
	a.text = text
	return nil
}
