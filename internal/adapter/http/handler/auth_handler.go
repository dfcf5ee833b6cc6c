package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// AuthService defines the behavior needed by AuthHandler.
type AuthService interface {
	CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error)
	EnrollTOTP(ctx context.Context, userID string) (*usecase.TOTPEnrollment, error)
	ConfirmTOTP(ctx context.Context, userID, code string) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	SetUserActive(ctx context.Context, id string, active bool) error
}

// AuthHandler handles sign in, two-factor enrollment and staff accounts.
type AuthHandler struct {
	authUC AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUC AuthService) *AuthHandler {
	return &AuthHandler{authUC: authUC}
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authUC.Login(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.UserFromDomain(result.User),
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	current, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	user, err := h.authUC.GetUser(r.Context(), current.ID)
	if err != nil {
		writeDomainError(w, "failed to get user", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// EnrollTOTP issues a two-factor secret to the authenticated user.
func (h *AuthHandler) EnrollTOTP(w http.ResponseWriter, r *http.Request) {
	current, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	enrollment, err := h.authUC.EnrollTOTP(r.Context(), current.ID)
	if err != nil {
		writeDomainError(w, "failed to enroll two-factor", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TOTPEnrollmentResponse{
		Secret: enrollment.Secret,
		URI:    enrollment.URI,
	})
}

// ConfirmTOTP turns on two-factor sign in for the authenticated user.
func (h *AuthHandler) ConfirmTOTP(w http.ResponseWriter, r *http.Request) {
	current, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.ConfirmTOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authUC.ConfirmTOTP(r.Context(), current.ID, req.Code); err != nil {
		writeDomainError(w, "failed to confirm two-factor", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateUser creates a staff account.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authUC.CreateUser(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// GetUser retrieves a staff account by ID.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	user, err := h.authUC.GetUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get user", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// SetUserActive enables or disables a staff account.
func (h *AuthHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	var req dto.SetUserActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authUC.SetUserActive(r.Context(), id, req.Active); err != nil {
		writeDomainError(w, "failed to update user", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
