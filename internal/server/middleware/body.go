package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

type formKey struct{}

// BodyParserConfig bounds the bodies BodyParserMiddleware will buffer
type BodyParserConfig struct {
	MaxJSONSize int64
	MaxFormSize int64
	// MaxFormParams caps the number of key=value pairs decoded from a form
	MaxFormParams int
}

// BodyParserMiddleware buffers JSON and urlencoded bodies up to their size
// limits. Oversized bodies fail with 413, malformed ones with 400. Accepted
// bodies are replaced with a re-readable copy, and decoded forms are stored
// in the request context (see FormFromContext). Other content types pass
// through untouched.
func BodyParserMiddleware(cfg BodyParserConfig, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			switch mediaType(r) {
			case constants.ContentTypeJSON:
				raw, err := readLimited(w, r, cfg.MaxJSONSize)
				if err != nil {
					onError(w, r, err)
					return
				}
				if err := checkJSON(raw); err != nil {
					onError(w, r, err)
					return
				}
				replaceBody(r, raw)

			case constants.ContentTypeForm:
				raw, err := readLimited(w, r, cfg.MaxFormSize)
				if err != nil {
					onError(w, r, err)
					return
				}
				form, err := ParseNestedForm(string(raw), cfg.MaxFormParams)
				if err != nil {
					onError(w, r, apierror.Wrap(err, http.StatusBadRequest, constants.ErrorCodeBadRequest, "Malformed form body"))
					return
				}
				replaceBody(r, raw)
				r = r.WithContext(context.WithValue(r.Context(), formKey{}, form))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FormFromContext returns the decoded urlencoded body, or nil when the
// request did not carry one
func FormFromContext(ctx context.Context) map[string]interface{} {
	form, _ := ctx.Value(formKey{}).(map[string]interface{})
	return form
}

// mediaType returns the lowercased media type, folding structured +json
// types into application/json
func mediaType(r *http.Request) string {
	ct := r.Header.Get(constants.HeaderContentType)
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(mt, "+json") {
		return constants.ContentTypeJSON
	}
	return mt
}

func readLimited(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if limit > 0 && r.ContentLength > limit {
		return nil, apierror.PayloadTooLarge(limit)
	}
	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apierror.PayloadTooLarge(limit)
		}
		return nil, apierror.Wrap(err, http.StatusBadRequest, constants.ErrorCodeBadRequest, "Failed to read request body")
	}
	return raw, nil
}

// checkJSON accepts an empty body, or a JSON object or array
func checkJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return apierror.New(http.StatusBadRequest, constants.ErrorCodeInvalidJSON, "Request body must be a JSON object or array")
	}
	if !json.Valid(trimmed) {
		return apierror.New(http.StatusBadRequest, constants.ErrorCodeInvalidJSON, "Malformed JSON request body")
	}
	return nil
}

func replaceBody(r *http.Request, raw []byte) {
	r.Body = io.NopCloser(bytes.NewReader(raw))
	r.ContentLength = int64(len(raw))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(raw)), nil
	}
}
