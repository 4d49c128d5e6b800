package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "accounts/backend/internal/domain/user"

	"github.com/google/uuid"
)

// Service coordinates registration, login, and token verification between
// the domain and infrastructure. It is free of transport concerns: every
// failure is one of the domain sentinel errors, mapped to a status code
// only at the HTTP boundary.
type Service struct {
	users     domain.Repository
	passwords PasswordHasher
	tokens    TokenManager
	nowFunc   func() time.Time
}

// NewService constructs an auth service.
func NewService(users domain.Repository, passwords PasswordHasher, tokens TokenManager) *Service {
	return &Service{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		nowFunc:   time.Now,
	}
}

// Register creates a new user account. The caller learns only success or
// failure; the persisted record is never returned.
func (s *Service) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrMissingFields
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    s.nowFunc().UTC(),
	}

	// The store's unique constraint closes the check-then-create race:
	// a concurrent duplicate surfaces here as ErrEmailExists.
	return s.users.Create(ctx, user)
}

// Login validates credentials and returns a signed token. An unknown email
// and a wrong password fail with the same sentinel so the caller cannot
// enumerate accounts.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return "", domain.ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.passwords.Verify(creds.Password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	return s.tokens.Generate(user.ID)
}

// Authenticate validates a bearer token and returns the associated user
// with the password hash stripped. A token whose subject no longer exists
// is rejected the same way as an invalid one.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
