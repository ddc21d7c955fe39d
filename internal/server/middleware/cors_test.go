package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leslieo2/hotel-booking-mock/internal/config"
)

func TestCORSMiddleware_Wildcard(t *testing.T) {
	cors := NewCORSMiddleware(config.DefaultCORSConfig())
	handler := cors.Handler(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://app.example.com")
	rec := do(handler, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	cors := NewCORSMiddleware(config.DefaultCORSConfig())
	called := false
	handler := cors.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/hotel/search", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	rec := do(handler, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET,HEAD,PUT,PATCH,POST,DELETE", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "0", rec.Header().Get("Content-Length"))
}

func TestCORSMiddleware_SpecificOrigins(t *testing.T) {
	cfg := config.DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"http://allowed.example.com"}
	cfg.AllowCredentials = true
	cfg.MaxAge = 600
	handler := NewCORSMiddleware(cfg).Handler(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "allowed", origin: "http://allowed.example.com", want: "http://allowed.example.com"},
		{name: "rejected", origin: "http://other.example.com", want: ""},
		{name: "no origin", origin: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := do(handler, req)

			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
			if tt.want != "" {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
				assert.Contains(t, rec.Header().Values("Vary"), "Origin")
			}
		})
	}
}
