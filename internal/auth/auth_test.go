package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAPIKey(t *testing.T) {
	handler := RequireAPIKey([]string{"secret-1", "secret-2"})(okHandler())

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"valid key", "secret-2", http.StatusOK},
		{"invalid key", "nope", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
		if tt.key != "" {
			req.Header.Set(APIKeyHeader, tt.key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}

func TestRequireAPIKey_NoKeysConfigured(t *testing.T) {
	handler := RequireAPIKey(nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no keys are configured", rec.Code)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken() error: %v", err)
	}

	claims, err := ValidateAdminToken("test-secret", token)
	if err != nil {
		t.Fatalf("ValidateAdminToken() error: %v", err)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}

	if _, err := ValidateAdminToken("other-secret", token); err == nil {
		t.Error("expected validation failure with the wrong secret")
	}
}

func TestRequireAdmin(t *testing.T) {
	token, err := GenerateAdminToken("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken() error: %v", err)
	}
	handler := RequireAdmin("test-secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a token", rec.Code)
	}
}
