package user

import (
	"errors"
	"time"
)

var (
	// ErrMissingFields indicates required registration or login input was absent.
	ErrMissingFields = errors.New("email and password are required")
	// ErrEmailExists signals a duplicate email registration.
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid means a supplied token cannot be validated.
	ErrTokenInvalid = errors.New("token invalid or expired")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
)

// User models the account entity persisted in storage. The email is the
// business key: stored trimmed, compared case-sensitively, unique across
// all records. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string
	Password string
}
