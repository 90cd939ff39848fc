package user

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the persistence contract for user accounts.
type UserRepository interface {
	// FindByID retrieves a user by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Save persists a new user.
	Save(ctx context.Context, user *User) error
}
