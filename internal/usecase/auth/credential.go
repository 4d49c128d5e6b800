package auth

// PasswordHasher abstracts one-way password hashing and verification.
// Verify treats malformed stored hashes as a non-match rather than
// reporting an error, so callers always fail closed.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) bool
}
