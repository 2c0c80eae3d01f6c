// Package paymentrepo provides data transfer objects and mapping functions for payment persistence.
// This package implements the repository pattern for payment intents, handling the conversion
// between domain entities and database representations.
package paymentrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/payment"

	"github.com/google/uuid"
)

// PaymentDTO represents the database structure for persisting payment intents.
// The provider transaction id carries the unique constraint that webhook
// reconciliation relies on for replay detection.
type PaymentDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID `gorm:"type:uuid;index"`
	Provider      string    `gorm:"type:varchar(64)"`
	ProviderTxnID string    `gorm:"type:varchar(128);uniqueIndex"`
	Amount        int64     `gorm:"not null"`
	Status        string    `gorm:"type:varchar(16);index"`
	CapturedAt    *time.Time
	Metadata      string
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the database table name for payment entities.
// Overrides GORM's default naming convention to use "payments".
func (PaymentDTO) TableName() string {
	return "payments"
}

// fromDomain converts a payment domain aggregate to its database representation.
func fromDomain(aggregate *payment.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            aggregate.ID().Bytes(),
		OrderID:       aggregate.OrderID().Bytes(),
		Provider:      aggregate.Provider(),
		ProviderTxnID: aggregate.ProviderTxnID(),
		Amount:        aggregate.Amount().MinorUnits(),
		Status:        string(aggregate.Status()),
		CapturedAt:    aggregate.CapturedAt(),
		Metadata:      aggregate.Metadata(),
	}
}

// toDomain converts a database DTO to a payment domain aggregate.
func toDomain(dto PaymentDTO) (*payment.Payment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	amount, err := kernel.NewMoney(dto.Amount)
	if err != nil {
		return nil, err
	}

	return payment.RestorePayment(
		id,
		orderID,
		dto.Provider,
		dto.ProviderTxnID,
		amount,
		payment.Status(dto.Status),
		dto.CapturedAt,
		dto.Metadata,
	)
}
