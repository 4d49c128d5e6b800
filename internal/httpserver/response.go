package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
)

// response is the envelope shared by every endpoint: {success, message}
// plus an optional token (login) or user (auth).
type response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *userProfile `json:"user,omitempty"`
}

// userProfile is the outward view of a user. The password hash has no
// field here, so it cannot leak through serialization.
type userProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Message: message})
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
