package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// SignupRequest - POST /signup body
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
}

// LoginRequest - POST /login body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse - common reply shape for the auth endpoints
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Email   string `json:"email,omitempty"`
	Nom     string `json:"nom,omitempty"`
	Prenom  string `json:"prenom,omitempty"`
}

// Handler - HTTP layer for accounts
type Handler struct {
	service *Service
}

// NewHandler - create auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - register auth routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/signup", h.HandleSignup).Methods("POST")
	r.HandleFunc("/login", h.HandleLogin).Methods("POST")
	r.HandleFunc("/delete/{email}", h.HandleDelete).Methods("DELETE")
}

// HandleSignup - POST /signup
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "email and password are required"})
		return
	}

	if err := h.service.Signup(r.Context(), req.Email, req.Password, req.Nom, req.Prenom); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: err.Error()})
			return
		}
		log.Printf("❌ [Auth] Signup failed for %s: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "signup failed"})
		return
	}

	log.Printf("✅ [Auth] Account created: %s", req.Email)
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Email: req.Email})
}

// HandleLogin - POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "email and password are required"})
		return
	}

	sessionToken, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: err.Error()})
			return
		}
		log.Printf("❌ [Auth] Login failed for %s: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "login failed"})
		return
	}

	log.Printf("✅ [Auth] Login: %s", req.Email)
	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Token:   sessionToken,
		Email:   user.Email,
		Nom:     user.Nom,
		Prenom:  user.Prenom,
	})
}

// HandleDelete - DELETE /delete/{email}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if email == "" {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "email is required"})
		return
	}

	if err := h.service.DeleteAccount(r.Context(), email); err != nil {
		if errors.Is(err, ErrUnknownUser) {
			writeJSON(w, http.StatusNotFound, AuthResponse{Success: false, Message: err.Error()})
			return
		}
		log.Printf("❌ [Auth] Delete failed for %s: %v", email, err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "account deletion failed"})
		return
	}

	log.Printf("✅ [Auth] Account deleted: %s", email)
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Email: email})
}

func writeJSON(w http.ResponseWriter, status int, body AuthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
