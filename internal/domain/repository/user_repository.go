package repository

import (
	"context"

	"wanderlust-service/internal/domain/entity"
)

// UserRepository defines the interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByName(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// Delete removes the user and everything the user owns
	Delete(ctx context.Context, id uint) error
}
