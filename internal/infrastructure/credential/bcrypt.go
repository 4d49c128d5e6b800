package credential

import (
	usecase "accounts/backend/internal/usecase/auth"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes passwords with bcrypt. Each hash embeds a random
// per-call salt, the cost factor, and an algorithm tag, so verification
// needs no metadata beyond the encoded string itself.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a hasher at cost 10, bcrypt's default work
// factor.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Ensure BcryptHasher implements the PasswordHasher interface.
var _ usecase.PasswordHasher = (*BcryptHasher)(nil)

// Hash derives a salted one-way hash of the plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the encoded hash. The
// comparison is constant-time; a malformed encoded value is a non-match.
func (h *BcryptHasher) Verify(plaintext, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
}
