package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/uteshop/uteshop-backend/pkg/auth"
	"github.com/uteshop/uteshop-backend/pkg/config"
	"github.com/uteshop/uteshop-backend/pkg/enums"
)

func jwtTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-test-secret",
		Issuer:            "uteshop",
		ExpirationMinutes: 60,
	}
}

func mintToken(t *testing.T, userID int64, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(jwtTestConfig(), time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Email:  "a@b.com",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	return token
}

func TestAuthSeedsIdentity(t *testing.T) {
	var gotUserID int64
	var gotRole enums.UserRole
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	})

	handler := Auth(jwtTestConfig(), nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, 42, enums.UserRoleCustomer))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotUserID != 42 || gotRole != enums.UserRoleCustomer {
		t.Errorf("identity = %d/%s, want 42/customer", gotUserID, gotRole)
	}
}

func TestAuthRejections(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without valid credentials")
	})
	handler := Auth(jwtTestConfig(), nil)(next)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"empty bearer", "Bearer   "},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAdmin(nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(WithIdentity(req.Context(), 1, enums.UserRoleAdmin))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("admin status = %d, want 204", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(WithIdentity(req.Context(), 2, enums.UserRoleCustomer))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer status = %d, want 403", w.Code)
	}
}
