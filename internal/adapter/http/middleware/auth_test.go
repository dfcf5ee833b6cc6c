package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/auth"
)

func issueToken(t *testing.T, m *auth.JWTManager, role domain.Role) string {
	t.Helper()
	token, _, err := m.Generate(&domain.User{ID: "user-1", Email: "ana@gt.example", Role: role})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	expired := auth.NewJWTManager("test-secret", -time.Minute)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing or malformed"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "missing or malformed"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "invalid token"},
		{"expired token", "Bearer " + issueToken(t, expired, domain.RoleAdmin), http.StatusUnauthorized, "token has expired"},
		{"valid token", "Bearer " + issueToken(t, manager, domain.RoleMechanic), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *domain.User
			h := AuthMiddleware(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = domain.UserFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/parts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to mention %q, got %s", tt.wantBody, rr.Body.String())
			}
			if tt.wantStatus == http.StatusOK && (seen == nil || seen.ID != "user-1" || seen.Role != domain.RoleMechanic) {
				t.Fatalf("expected user in context, got %+v", seen)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"viewer below mechanic", &domain.User{ID: "u", Role: domain.RoleViewer}, http.StatusForbidden},
		{"mechanic meets mechanic", &domain.User{ID: "u", Role: domain.RoleMechanic}, http.StatusOK},
		{"admin above mechanic", &domain.User{ID: "u", Role: domain.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireRole(domain.RoleMechanic)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/movements", nil)
			if tt.user != nil {
				req = req.WithContext(domain.ContextWithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestOptionalAuthIgnoresBadTokens(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)

	called := false
	h := OptionalAuth(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := domain.UserFromContext(r.Context()); ok {
			t.Fatalf("expected no user for a bad token")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Authorization", "Bearer broken")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatalf("expected request to pass through")
	}
}
