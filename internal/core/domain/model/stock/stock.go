package stock

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrStockIsNotConstructed is returned when a Stock instance was not
	// created through NewStock or RestoreStock.
	ErrStockIsNotConstructed = errors.New("Stock must be created via NewStock or RestoreStock constructor")

	// ErrInsufficientStock is the sentinel error reserve fails with when
	// the available quantity cannot satisfy a request. The concrete
	// InsufficientStockError names the product.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError identifies the first product whose available
// quantity could not satisfy a reservation request.
type InsufficientStockError struct {
	ProductID kernel.UUID
	Requested int
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: product %s has %d available, %d requested",
		e.ProductID, e.Available, e.Requested)
}

// Unwrap returns the sentinel so errors.Is(err, ErrInsufficientStock) holds.
func (e InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// Stock is the per-product, per-store inventory ledger record. It tracks a
// total quantity and the share of it provisionally held by reservations.
//
// Invariant, held at all times: 0 <= reserved <= quantity.
// available = quantity - reserved is derived, never stored.
//
// All mutation goes through Reserve, Release, Commit and Restock; field
// writes from outside the aggregate are impossible by construction.
type Stock struct {
	productID kernel.UUID
	storeID   kernel.UUID
	quantity  int
	reserved  int

	isConstructed bool
}

// NewStock creates a ledger record for a product with an initial quantity
// and nothing reserved.
func NewStock(productID kernel.UUID, storeID kernel.UUID, quantity int) (*Stock, error) {
	if quantity < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is negative", quantity))
	}

	s := &Stock{
		quantity:      quantity,
		isConstructed: true,
	}

	if err := errors.Join(s.setProductID(productID), s.setStoreID(storeID)); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreStock reconstructs a ledger record from persistence, re-checking
// the reserved/quantity invariant against stored data.
func RestoreStock(productID kernel.UUID, storeID kernel.UUID, quantity int, reserved int) (*Stock, error) {
	s, err := NewStock(productID, storeID, quantity)
	if err != nil {
		return nil, err
	}

	if reserved < 0 || reserved > quantity {
		return nil, errs.NewValueIsOutOfRangeError("reserved", reserved, 0, quantity)
	}
	s.reserved = reserved

	return s, nil
}

// Validate ensures the Stock was created through a constructor.
func (s *Stock) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrStockIsNotConstructed
	}
	return nil
}

// ProductID returns the product this record tracks.
func (s *Stock) ProductID() kernel.UUID {
	return s.productID
}

// StoreID returns the store this record belongs to.
func (s *Stock) StoreID() kernel.UUID {
	return s.storeID
}

// Quantity returns the total quantity on hand.
func (s *Stock) Quantity() int {
	return s.quantity
}

// Reserved returns the quantity provisionally held by reservations.
func (s *Stock) Reserved() int {
	return s.reserved
}

// Available returns the quantity open for new reservations.
func (s *Stock) Available() int {
	return s.quantity - s.reserved
}

// Reserve places a provisional hold on qty units. Fails with an
// InsufficientStockError naming this product when availability is short;
// the record is left unchanged on failure.
func (s *Stock) Reserve(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("reserve quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}
	if s.Available() < qty {
		return InsufficientStockError{
			ProductID: s.productID,
			Requested: qty,
			Available: s.Available(),
		}
	}

	s.reserved += qty
	return nil
}

// Release returns up to qty reserved units to availability, flooring
// reserved at zero. Releasing more than is currently reserved is a no-op
// past the floor, which makes compensation idempotent against replays.
func (s *Stock) Release(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("release quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}

	s.reserved -= qty
	if s.reserved < 0 {
		s.reserved = 0
	}
	return nil
}

// Commit converts a reservation into a permanent deduction at fulfillment:
// both reserved and quantity drop by qty. Committing more than is reserved
// is rejected, as that would break the ledger invariant.
func (s *Stock) Commit(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("commit quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}
	if qty > s.reserved {
		return errs.NewValueIsOutOfRangeError("commit quantity", qty, 1, s.reserved)
	}

	s.reserved -= qty
	s.quantity -= qty
	return nil
}

// Restock increases the total quantity, e.g. when the store replenishes.
func (s *Stock) Restock(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("restock quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}

	s.quantity += qty
	return nil
}

func (s *Stock) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("product id", err)
	}
	s.productID = productID
	return nil
}

func (s *Stock) setStoreID(storeID kernel.UUID) error {
	if err := storeID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("store id", err)
	}
	s.storeID = storeID
	return nil
}
