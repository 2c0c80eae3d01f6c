// Package identityrepo resolves accounts from the users table. The order
// flow only needs to know whether a caller exists and is active; account
// management lives elsewhere.
package identityrepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserDTO represents the database structure for accounts.
type UserDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role      string    `gorm:"type:varchar(32)"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the database table name for user entities.
func (UserDTO) TableName() string {
	return "users"
}

// GormIdentityProvider implements IdentityProvider using GORM.
type GormIdentityProvider struct {
	db *gorm.DB
}

// NewGormIdentityProvider creates a new GORM identity provider.
func NewGormIdentityProvider(db *gorm.DB) *GormIdentityProvider {
	return &GormIdentityProvider{db: db}
}

// GetUserByID resolves an account by id.
func (p *GormIdentityProvider) GetUserByID(ctx context.Context, id kernel.UUID) (ports.User, error) {
	if err := id.Validate(); err != nil {
		return ports.User{}, err
	}

	var dto UserDTO
	if err := p.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, errs.NewObjectNotFoundError("user", id.String())
		}
		return ports.User{}, err
	}

	userID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.User{}, err
	}

	return ports.User{
		ID:       userID,
		Role:     dto.Role,
		IsActive: dto.IsActive,
	}, nil
}
