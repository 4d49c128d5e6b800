package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"accounts/backend/internal/config"
	domain "accounts/backend/internal/domain/user"
	"accounts/backend/internal/infrastructure/credential"
	"accounts/backend/internal/infrastructure/token"
	authusecase "accounts/backend/internal/usecase/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User

	failWith error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byEmail: map[string]*domain.User{},
		byID:    map[string]*domain.User{},
	}
}

func (m *memoryRepo) Create(ctx context.Context, u *domain.User) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.ErrEmailExists
	}
	stored := *u
	m.byEmail[u.Email] = &stored
	m.byID[u.ID] = &stored
	return nil
}

func (m *memoryRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if u, ok := m.byEmail[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memoryRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if u, ok := m.byID[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, domain.ErrUserNotFound
}

func newTestServer(repo domain.Repository) *Server {
	cfg := config.Config{
		HTTPPort:       "0",
		AllowedOrigins: []string{"*"},
	}
	svc := authusecase.NewService(
		repo,
		credential.NewBcryptHasher(),
		token.NewJWTManager("test-secret", time.Hour, "accounts-test"),
	)
	return NewServer(cfg, svc)
}

func doRequest(t *testing.T, s *Server, method, path, body, bearer string) (*httptest.ResponseRecorder, response) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	var resp response
	if rec.Body.Len() > 0 && rec.Code != http.StatusNoContent {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func TestRegisterLoginAuthFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(newMemoryRepo())

	rec, resp := doRequest(t, s, http.MethodPost, "/register", `{"email":"u@test.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "User registered successfully", resp.Message)

	rec, resp = doRequest(t, s, http.MethodPost, "/login", `{"email":"u@test.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)

	rec, resp = doRequest(t, s, http.MethodGet, "/auth", "", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "u@test.com", resp.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(newMemoryRepo())

	rec, resp := doRequest(t, s, http.MethodPost, "/register", `{"email":"u@test.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Email and password are required", resp.Message)

	rec, _ = doRequest(t, s, http.MethodPost, "/register", `{"password":"pw123"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doRequest(t, s, http.MethodPost, "/register", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doRequest(t, s, http.MethodGet, "/register", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	s := newTestServer(newMemoryRepo())

	rec, _ := doRequest(t, s, http.MethodPost, "/register", `{"email":"a@x.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same email with incidental whitespace is still a duplicate.
	rec, resp := doRequest(t, s, http.MethodPost, "/register", `{"email":" a@x.com ","password":"other"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "User already exists with this email: try login", resp.Message)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	s := newTestServer(newMemoryRepo())

	rec, _ := doRequest(t, s, http.MethodPost, "/register", `{"email":"u@test.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doRequest(t, s, http.MethodPost, "/login", `{"email":"u@test.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", resp.Message)

	// Unknown email produces the exact same response, no enumeration.
	rec, resp = doRequest(t, s, http.MethodPost, "/login", `{"email":"nobody@test.com","password":"pw123"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", resp.Message)
}

func TestAuthRejections(t *testing.T) {
	t.Parallel()

	s := newTestServer(newMemoryRepo())

	rec, resp := doRequest(t, s, http.MethodGet, "/auth", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not provided", resp.Message)

	rec, resp = doRequest(t, s, http.MethodGet, "/auth", "", "not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", resp.Message)

	// A token signed with the wrong secret is indistinguishable from an
	// expired one at the HTTP surface.
	forged, err := token.NewJWTManager("other-secret", time.Hour, "accounts-test").Generate("some-user")
	require.NoError(t, err)
	rec, resp = doRequest(t, s, http.MethodGet, "/auth", "", forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", resp.Message)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	s := newTestServer(repo)

	rec, _ := doRequest(t, s, http.MethodPost, "/register", `{"email":"u@test.com","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var userID string
	for id := range repo.byID {
		userID = id
	}
	expired := token.NewJWTManager("test-secret", -time.Minute, "accounts-test")
	tok, err := expired.Generate(userID)
	require.NoError(t, err)

	rec, resp := doRequest(t, s, http.MethodGet, "/auth", "", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", resp.Message)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	repo.failWith = errors.New("pq: connection refused")
	s := newTestServer(repo)

	rec, resp := doRequest(t, s, http.MethodPost, "/register", `{"email":"u@test.com","password":"pw123"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.NotContains(t, resp.Message, "connection refused")

	rec, resp = doRequest(t, s, http.MethodPost, "/login", `{"email":"u@test.com","password":"pw123"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(newMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
