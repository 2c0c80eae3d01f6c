package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrStartAssignmentCommandIsNotConstructed = errors.New(
	"StartAssignmentCommand must be created via NewStartAssignmentCommand constructor",
)

// StartAssignmentCommand represents a sweep over confirmed orders,
// opening each one for courier assignment. Carries no payload; the sweep
// job issues it on a schedule.
type StartAssignmentCommand struct {
	guard guard.ConstructorGuard
}

// NewStartAssignmentCommand creates a command to open confirmed orders
// for assignment.
func NewStartAssignmentCommand() (StartAssignmentCommand, error) {
	return StartAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c StartAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrStartAssignmentCommandIsNotConstructed)
}
