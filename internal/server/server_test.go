package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
	"github.com/leslieo2/hotel-booking-mock/internal/observability"
)

func TestHealth(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 30, 45, 123456789, time.FixedZone("CET", 3600))
	srv, _ := newTestServer(t, nil, WithClock(func() time.Time { return fixed }))

	rec := do(t, srv.Handler(), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	body := decode(t, rec)
	assert.Equal(t, map[string]interface{}{
		"status":    "OK",
		"timestamp": "2026-03-01T11:30:45.123Z",
		"service":   "Hotel Booking Mock API",
		"version":   "1.0.0",
	}, body)
}

func TestHealth_TimestampsNonDecreasing(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var previous time.Time
	for i := 0; i < 5; i++ {
		body := decode(t, do(t, srv.Handler(), http.MethodGet, "/health", nil))
		ts, err := time.Parse(observability.TimestampLayout, body["timestamp"].(string))
		require.NoError(t, err)
		assert.False(t, ts.Before(previous), "timestamp went backwards: %v then %v", previous, ts)
		assert.Equal(t, time.UTC, ts.Location())
		previous = ts
	}
}

func TestHealth_HeadAndSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodHead, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get(constants.HeaderXRequestID))
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/unknown"},
		{http.MethodPost, "/api/unknown"},
		{http.MethodDelete, "/nothing/here"},
		{http.MethodPatch, "/api/hotel"},
		// Known paths called with an unregistered method
		{http.MethodPost, "/health"},
		{http.MethodDelete, "/api/hotel/search"},
		{http.MethodGet, "/api/auth/login"},
		{http.MethodPut, "/"},
		// Paths the mux would otherwise redirect to their cleaned form
		{http.MethodGet, "//x"},
		{http.MethodGet, "/foo/../bar"},
		{http.MethodGet, "/api//unknown"},
		{http.MethodGet, "/./health"},
		{http.MethodPost, "/api/hotel//search"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, srv.Handler(), tt.method, tt.path, nil, constants.HeaderXRequestID, "req-404")

			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "NOT_FOUND", body["error"])
			assert.Equal(t, "NOT_FOUND", body["code"])
			assert.Equal(t, "Not Found - "+tt.path, body["message"])
			assert.Equal(t, tt.path, body["path"])
			assert.Equal(t, "req-404", body["request_id"])
			assert.NotEmpty(t, body["timestamp"])
			assert.NotContains(t, body, "details")
		})
	}
}

func TestPayloadTooLarge(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.MaxBodySize = 64
	}, WithGroup("/api/test", faultyGroup{}))

	big := `{"padding":"` + strings.Repeat("x", 100) + `"}`

	t.Run("rejected before the collaborator", func(t *testing.T) {
		rec := do(t, srv.Handler(), http.MethodPost, "/api/test/echo", big)
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "PAYLOAD_TOO_LARGE", decode(t, rec)["code"])
	})

	t.Run("rejected on auth routes too", func(t *testing.T) {
		rec := do(t, srv.Handler(), http.MethodPost, "/api/auth/login", big)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("small body reaches the collaborator", func(t *testing.T) {
		rec := do(t, srv.Handler(), http.MethodPost, "/api/test/echo", `{"ok":true}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("malformed JSON", func(t *testing.T) {
		rec := do(t, srv.Handler(), http.MethodPost, "/api/test/echo", `{"ok":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_JSON", decode(t, rec)["code"])
	})
}

func TestCollaboratorFailures(t *testing.T) {
	srv, logs := newTestServer(t, nil, WithGroup("/api/test", faultyGroup{}))

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"plain error", "/api/test/error", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"api error", "/api/test/conflict", http.StatusConflict, "CONFLICT"},
		{"panic", "/api/test/panic", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodGet, tt.path, nil)

			require.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, false, body["success"])
			// Production never leaks causes
			assert.NotContains(t, body, "details")
		})
	}

	// The server keeps serving afterwards
	rec := do(t, srv.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NotZero(t, logs.FilterMessage("Recovered from panic").Len())
	assert.NotZero(t, logs.FilterMessage("Request failed").FilterField(
		zapcore.Field{Key: "path", Type: zapcore.StringType, String: "/api/test/error"}).Len())
}

func TestCollaboratorFailure_AfterWrite(t *testing.T) {
	srv, _ := newTestServer(t, nil, WithGroup("/api/test", faultyGroup{}))

	rec := do(t, srv.Handler(), http.MethodGet, "/api/test/partial", nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestDevelopmentDetails(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Environment = constants.EnvironmentDev
	}, WithGroup("/api/test", faultyGroup{}))

	body := decode(t, do(t, srv.Handler(), http.MethodGet, "/api/test/error", nil))
	assert.Equal(t, "Internal Server Error", body["message"])
	assert.Equal(t, "database exploded", body["details"])

	body = decode(t, do(t, srv.Handler(), http.MethodGet, "/api/test/panic", nil))
	assert.Equal(t, "panic: collaborator bug", body["details"])
}

func TestReady(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]interface{}{"catalog": true, "auth": true}, body["checks"])
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Hotel Booking Mock API", body["message"])
	assert.Equal(t, "/openapi.json", body["docs"])

	endpoints, ok := body["endpoints"].([]interface{})
	require.True(t, ok)
	assert.Len(t, endpoints, len(srv.Routes()))

	var found bool
	for _, e := range endpoints {
		ep := e.(map[string]interface{})
		if ep["path"] == "/api/hotel/search" {
			found = true
			assert.Equal(t, "POST", ep["method"])
			assert.Equal(t, "Search hotels in a city with rooms for the party", ep["summary"])
		}
		assert.NotContains(t, ep["path"], "{$}")
	}
	assert.True(t, found)
}

func TestRoutesMatchAPIDocument(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	served := make(map[string]bool)
	for _, r := range srv.Routes() {
		served[r.Method+" "+displayPath(r.Path)] = true
	}
	documented := make(map[string]bool)
	for _, op := range srv.docs.Operations() {
		documented[op.Method+" "+op.Path] = true
	}

	assert.Equal(t, documented, served)
}

func TestOpenAPIEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "3.0.3", body["openapi"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	do(t, srv.Handler(), http.MethodGet, "/health", nil)
	do(t, srv.Handler(), http.MethodGet, "/missing", nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	text := rec.Body.String()
	assert.Contains(t, text, `http_requests_total{method="GET",route="GET /health",status_code="200"} 1`)
	assert.Contains(t, text, `http_requests_total{method="GET",route="unmatched",status_code="404"} 1`)
}

func TestMetricsEndpoint_DedicatedPort(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.MetricsPort = "9464"
	})

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodOptions, "/api/hotel/search", nil,
		"Origin", "https://app.example.com",
		"Access-Control-Request-Method", "POST",
	)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	rec = do(t, srv.Handler(), http.MethodGet, "/health", nil, "Origin", "https://app.example.com")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RateLimit.Enabled = true
		cfg.Security.RateLimit.Global = &config.RateLimit{RequestsPerSecond: 1, BurstSize: 2}
	})

	for i := 0; i < 2; i++ {
		rec := do(t, srv.Handler(), http.MethodGet, "/api/auth/demo-credentials", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, srv.Handler(), http.MethodGet, "/api/auth/demo-credentials", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", decode(t, rec)["code"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Shell endpoints are not limited
	assert.Equal(t, http.StatusOK, do(t, srv.Handler(), http.MethodGet, "/health", nil).Code)
}

func TestAccessLog(t *testing.T) {
	srv, logs := newTestServer(t, nil)

	do(t, srv.Handler(), http.MethodGet, "/health", nil, constants.HeaderXRequestID, "trace-me")

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/health", fields["path"])
	assert.EqualValues(t, 200, fields["status_code"])
	assert.Equal(t, "trace-me", fields["request_id"])
}

func TestDefaultPort(t *testing.T) {
	t.Setenv(constants.EnvPort, "")
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	srv, _ := newTestServer(t, func(c *config.Config) { *c = *cfg })
	assert.Equal(t, "3000", srv.config.Server.Port)
	assert.True(t, strings.HasSuffix(srv.config.GetServerAddress(), ":3000"))
}
