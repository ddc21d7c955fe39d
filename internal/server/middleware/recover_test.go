package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecoverMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	sink := &errorSink{}
	handler := RecoverMiddleware(zap.New(core), sink.handle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("collaborator exploded")
	}))

	rec := do(handler, httptest.NewRequest(http.MethodPost, "/api/hotel/book", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, sink.errs, 1)
	var panicErr *PanicError
	require.ErrorAs(t, sink.errs[0], &panicErr)
	assert.Equal(t, "collaborator exploded", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INTERNAL_ERROR", body["code"])

	assert.Equal(t, 1, logs.FilterMessage("Recovered from panic").Len())
}

func TestRecoverMiddleware_PassThrough(t *testing.T) {
	sink := &errorSink{}
	handler := RecoverMiddleware(zap.NewNop(), sink.handle)(http.HandlerFunc(okHandler))

	rec := do(handler, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sink.errs)
}

func TestRecoverMiddleware_AbortHandler(t *testing.T) {
	handler := RecoverMiddleware(zap.NewNop(), (&errorSink{}).handle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		do(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
