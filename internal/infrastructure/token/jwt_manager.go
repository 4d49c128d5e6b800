package token

import (
	"errors"
	"time"

	usecase "accounts/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired indicates the token signature was valid but its expiry
	// has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid indicates a malformed token, a bad signature, or an
	// unexpected signing method.
	ErrInvalid = errors.New("token invalid")
)

// JWTManager issues and validates HS256-signed JWT tokens. Integrity rests
// entirely on the secrecy of the symmetric key; rotating it invalidates
// every outstanding token.
type JWTManager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTManager constructs a manager with the provided secret and expiration.
func NewJWTManager(secret string, expiration time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
	}
}

// Ensure JWTManager implements the TokenManager interface.
var _ usecase.TokenManager = (*JWTManager)(nil)

// Claims represents token claims.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Generate creates a signed token binding the user id to a validity
// window starting now.
func (m *JWTManager) Generate(userID string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate checks the signature before trusting any claim, then the
// expiry, and returns the embedded user id. ErrExpired and ErrInvalid are
// distinguishable for diagnostics; callers treat both as not
// authenticated.
func (m *JWTManager) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalid
	}
	return claims.UserID, nil
}
