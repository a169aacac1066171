package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carbvium/internal/auth"
	"github.com/ukydev/carbvium/internal/db"
	"github.com/ukydev/carbvium/internal/middleware"
	"github.com/ukydev/carbvium/internal/models"
)

// Identity is the account surface the auth handlers need.
type Identity interface {
	CreateAccount(ctx context.Context, email, password, username string) (string, error)
	Authenticate(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context, accessToken string) error
	Profile(ctx context.Context, claims *models.Claims) (*models.User, error)
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	identity Identity
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(identity Identity) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Signup handles account creation
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "Email, password, and username are required")
		return
	}

	userID, err := h.identity.CreateAccount(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "Email already registered")
		default:
			log.WithError(err).Error("Signup failed")
			writeError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, models.SignupResponse{
		Message: "User created successfully!",
		User: models.UserSummary{
			ID:       userID,
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
			Username: strings.TrimSpace(req.Username),
		},
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, auth.ErrUserInactive):
			writeError(w, http.StatusUnauthorized, "Account is deactivated")
		default:
			log.WithError(err).Error("Login failed")
			writeError(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Message: "Login successful",
		User:    session.User.Summary(),
		Session: models.SessionTokens{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			ExpiresAt:    session.ExpiresAt.Unix(),
		},
	})
}

// Logout revokes the access token given in the body or the Authorization header
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.LogoutRequest
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	// an empty body means the token comes from the header
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	token := req.AccessToken
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "Access token is required")
		return
	}

	if err := h.identity.Logout(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrRevokedToken):
			writeError(w, http.StatusBadRequest, "Invalid access token")
		default:
			log.WithError(err).Error("Logout failed")
			writeError(w, http.StatusInternalServerError, "Failed to log out")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Me returns the current user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	user, err := h.identity.Profile(r.Context(), claims)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.WithError(err).Error("Profile lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, true
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	return body, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, ok := readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}
