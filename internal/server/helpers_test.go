package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/router"
)

// newTestServer builds a server from the default configuration after
// applying mutate. Logs at debug level and above are captured.
func newTestServer(t *testing.T, mutate func(*config.Config), opts ...Option) (*Server, *observer.ObservedLogs) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	core, logs := observer.New(zapcore.DebugLevel)
	srv, err := New(cfg, zap.New(core), opts...)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return srv, logs
}

// do sends a request through the full middleware chain. A non-nil body is
// encoded as JSON unless it is already a string.
func do(t *testing.T, h http.Handler, method, target string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// faultyGroup is a collaborator that fails in every way a handler can
type faultyGroup struct{}

func (faultyGroup) Register(r *router.Router) {
	r.Get("/error", func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("database exploded")
	})
	r.Get("/conflict", func(w http.ResponseWriter, r *http.Request) error {
		return apierror.Conflict("Already done")
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) error {
		panic("collaborator bug")
	})
	r.Get("/partial", func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		return errors.New("failed after writing")
	})
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) error {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		_, err = w.Write(data)
		return err
	})
}
