package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	assert.False(t, rw.Written())
	assert.Equal(t, http.StatusOK, rw.StatusCode())

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.True(t, rw.Written())
	assert.Equal(t, http.StatusCreated, rw.StatusCode())
	assert.Equal(t, int64(5), rw.Size())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Same(t, rw, NewResponseWriter(rw))
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{name: "success", status: http.StatusOK, level: zapcore.InfoLevel},
		{name: "client error", status: http.StatusNotFound, level: zapcore.WarnLevel},
		{name: "server error", status: http.StatusInternalServerError, level: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := RequestIDMiddleware(LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})))

			req := httptest.NewRequest(http.MethodGet, "/api/hotel/search", nil)
			req.Header.Set("X-Request-ID", "req-123")
			req.Header.Set("Referer", "https://app.example.com/search")
			do(handler, req)

			entries := logs.All()
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, "HTTP request", entry.Message)

			fields := entry.ContextMap()
			assert.Equal(t, http.MethodGet, fields["method"])
			assert.Equal(t, "/api/hotel/search", fields["path"])
			assert.EqualValues(t, tt.status, fields["status_code"])
			assert.EqualValues(t, 4, fields["bytes"])
			assert.Equal(t, "req-123", fields["request_id"])
			assert.Equal(t, "https://app.example.com/search", fields["referer"])
		})
	}
}
