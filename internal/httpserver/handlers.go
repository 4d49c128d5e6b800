package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	domain "accounts/backend/internal/domain/user"
)

func (s *Server) registerRoutes() {
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))
	s.router.Handle("/register", http.HandlerFunc(s.handleRegister))
	s.router.Handle("/login", http.HandlerFunc(s.handleLogin))
	s.router.Handle("/auth", http.HandlerFunc(s.handleAuth))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if err := s.authService.Register(r.Context(), payload.Email, payload.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, domain.ErrEmailExists):
			writeError(w, http.StatusConflict, "User already exists with this email: try login")
		default:
			log.Printf("register: %v", err)
			writeError(w, http.StatusInternalServerError, "An error occurred during registration. Please try again later.")
		}
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, err := s.authService.Login(r.Context(), domain.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			// Identical message for unknown email and wrong password.
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			log.Printf("login: %v", err)
			writeError(w, http.StatusInternalServerError, "An error occurred during login. Please try again later.")
		}
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Login successful",
		Token:   token,
	})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Token is not provided")
		return
	}

	user, err := s.authService.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		log.Printf("auth: %v", err)
		writeError(w, http.StatusInternalServerError, "An error occurred. Please try again later.")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Authenticated",
		User: &userProfile{
			ID:    user.ID,
			Email: user.Email,
		},
	})
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
