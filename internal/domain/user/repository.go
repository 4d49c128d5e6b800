package user

import "context"

// Repository defines persistence operations for user accounts. The store
// must enforce email uniqueness atomically so concurrent registrations of
// the same email cannot both succeed.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
