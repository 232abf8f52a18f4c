package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/docvault/docvault/internal/handler/dto"
	"github.com/docvault/docvault/internal/service"
)

// Authenticator is the auth flow consumed by the HTTP layer.
type Authenticator interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.RegisterResult, error)
	Login(ctx context.Context, input service.LoginInput) (string, error)
}

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	svc    Authenticator
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc Authenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/v1/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.logger.Info("account_registered",
		"account_id", result.InsertedID,
		"username", req.Username,
	)

	writeResult(w, result)
}

// Login handles POST /api/v1/login. The token is the sole result payload.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	tok, err := h.svc.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	writeResult(w, tok)
}

// handleAuthError maps auth service errors to HTTP responses. Domain
// failures (duplicate username, unknown user, wrong password) all share the
// 500 status so callers cannot tell them apart by status code; the body
// carries a distinct machine code for debugging.
func (h *AuthHandler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusInternalServerError, "DUPLICATE_ACCOUNT", "username exists")
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusInternalServerError, "ACCOUNT_NOT_FOUND", "user doesn't exist")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusInternalServerError, "INVALID_CREDENTIALS", "wrong password")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
