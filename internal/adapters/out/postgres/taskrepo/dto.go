// Package taskrepo provides data transfer objects and mapping functions for task persistence.
// This package implements the repository pattern for courier delivery tasks, handling the
// conversion between domain entities and database representations.
package taskrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// TaskDTO represents the database structure for persisting delivery tasks.
// One active task exists per order, so order_id carries a unique constraint.
type TaskDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CourierID  uuid.UUID `gorm:"type:uuid;index"`
	Status     string    `gorm:"type:varchar(32);index"`
	ProofNote  string
	ProofPhoto string
	AssignedAt time.Time
	FinishedAt *time.Time
}

// TableName specifies the database table name for task entities.
// Overrides GORM's default naming convention to use "tasks".
func (TaskDTO) TableName() string {
	return "tasks"
}

// fromDomain converts a task domain aggregate to its database representation.
func fromDomain(aggregate *task.Task) TaskDTO {
	return TaskDTO{
		ID:         aggregate.ID().Bytes(),
		OrderID:    aggregate.OrderID().Bytes(),
		CourierID:  aggregate.CourierID().Bytes(),
		Status:     string(aggregate.Status()),
		ProofNote:  aggregate.ProofNote(),
		ProofPhoto: aggregate.ProofPhoto(),
		AssignedAt: aggregate.AssignedAt(),
		FinishedAt: aggregate.FinishedAt(),
	}
}

// toDomain converts a database DTO to a task domain aggregate.
func toDomain(dto TaskDTO) (*task.Task, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	return task.RestoreTask(
		id,
		orderID,
		courierID,
		task.Status(dto.Status),
		dto.ProofNote,
		dto.ProofPhoto,
		dto.AssignedAt,
		dto.FinishedAt,
	)
}
