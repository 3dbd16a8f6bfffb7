package identity

import "context"

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByUsername finds a user by username (lowercased)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create inserts a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Count counts all users
	Count(ctx context.Context) (int64, error)
}
