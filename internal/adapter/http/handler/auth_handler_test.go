package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

type authServiceStub struct {
	createFn    func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	loginFn     func(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error)
	enrollFn    func(ctx context.Context, userID string) (*usecase.TOTPEnrollment, error)
	confirmFn   func(ctx context.Context, userID, code string) error
	getFn       func(ctx context.Context, id string) (*domain.User, error)
	setActiveFn func(ctx context.Context, id string, active bool) error
}

func (s *authServiceStub) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, input)
}

func (s *authServiceStub) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error) {
	return s.loginFn(ctx, input)
}

func (s *authServiceStub) EnrollTOTP(ctx context.Context, userID string) (*usecase.TOTPEnrollment, error) {
	return s.enrollFn(ctx, userID)
}

func (s *authServiceStub) ConfirmTOTP(ctx context.Context, userID, code string) error {
	return s.confirmFn(ctx, userID, code)
}

func (s *authServiceStub) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *authServiceStub) SetUserActive(ctx context.Context, id string, active bool) error {
	return s.setActiveFn(ctx, id, active)
}

func withUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(domain.ContextWithUser(r.Context(), user))
}

func TestAuthHandler_Login_Success(t *testing.T) {
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	handler := NewAuthHandler(&authServiceStub{
		loginFn: func(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error) {
			if input.Email != "ana@gtservice.test" || input.TOTPCode != "123456" {
				t.Fatalf("unexpected input %+v", input)
			}
			return &usecase.LoginResult{
				Token:     "token-1",
				ExpiresAt: expires,
				User:      &domain.User{ID: "user-1", Email: input.Email, Role: domain.RoleMechanic, Active: true},
			}, nil
		},
	})

	body := `{"email": "ana@gtservice.test", "password": "Secret123!", "totp_code": "123456"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "token-1" || resp.User == nil || resp.User.Role != "mechanic" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"bad password", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"bad code", domain.ErrInvalidTOTP, http.StatusUnauthorized},
		{"locked", domain.ErrAccountLocked, http.StatusLocked},
		{"inactive", domain.ErrAccountInactive, http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&authServiceStub{
				loginFn: func(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email": "a@b.test", "password": "x"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestAuthHandler_GetCurrentUser_RequiresUser(t *testing.T) {
	handler := NewAuthHandler(&authServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()

	handler.GetCurrentUser(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_EnrollTOTP(t *testing.T) {
	handler := NewAuthHandler(&authServiceStub{
		enrollFn: func(ctx context.Context, userID string) (*usecase.TOTPEnrollment, error) {
			if userID != "user-1" {
				t.Fatalf("expected current user, got %s", userID)
			}
			return &usecase.TOTPEnrollment{Secret: "JBSWY3DPEHPK3PXP", URI: "otpauth://totp/GT:ana"}, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/auth/totp/enroll", nil), &domain.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	handler.EnrollTOTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TOTPEnrollmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Secret == "" || resp.URI == "" {
		t.Fatalf("expected secret and uri, got %+v", resp)
	}
}

func TestAuthHandler_ConfirmTOTP(t *testing.T) {
	handler := NewAuthHandler(&authServiceStub{
		confirmFn: func(ctx context.Context, userID, code string) error {
			if code != "654321" {
				return domain.ErrInvalidTOTP
			}
			return nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/auth/totp/confirm", bytes.NewBufferString(`{"code": "654321"}`)), &domain.User{ID: "user-1"})
	rec := httptest.NewRecorder()
	handler.ConfirmTOTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	req = withUser(httptest.NewRequest(http.MethodPost, "/auth/totp/confirm", bytes.NewBufferString(`{"code": "000000"}`)), &domain.User{ID: "user-1"})
	rec = httptest.NewRecorder()
	handler.ConfirmTOTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_CreateUser_DuplicateEmail(t *testing.T) {
	handler := NewAuthHandler(&authServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	})

	body := `{"email": "ana@gtservice.test", "name": "Ana", "password": "Secret123!", "role": "mechanic"}`
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.CreateUser(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_SetUserActive(t *testing.T) {
	var gotID string
	var gotActive = true
	handler := NewAuthHandler(&authServiceStub{
		setActiveFn: func(ctx context.Context, id string, active bool) error {
			gotID, gotActive = id, active
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/users/user-2/active", bytes.NewBufferString(`{"active": false}`))
	req = setChiURLParam(req, "id", "user-2")
	rec := httptest.NewRecorder()

	handler.SetUserActive(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotID != "user-2" || gotActive {
		t.Fatalf("expected user-2 deactivated, got %s %v", gotID, gotActive)
	}
}
