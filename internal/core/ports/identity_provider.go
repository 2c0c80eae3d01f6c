package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// Roles the identity service assigns to accounts.
const (
	RoleCustomer = "customer"
	RoleStore    = "store"
	RoleCourier  = "courier"
	RoleAdmin    = "admin"
)

// User is the identity service's view of an account.
type User struct {
	ID       kernel.UUID
	Role     string
	IsActive bool
}

// IdentityProvider resolves accounts referenced by incoming requests.
type IdentityProvider interface {
	// GetUserByID resolves an account by id.
	// Returns an ObjectNotFoundError for unknown accounts.
	GetUserByID(ctx context.Context, id kernel.UUID) (User, error)
}
