package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

type requestIDKey struct{}

// Inbound ids are echoed only when they look like ids
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,128}$`)

// RequestIDMiddleware tags every request with an id, reusing a well formed
// X-Request-ID from the client and generating a UUID otherwise. The id is
// echoed in the response header and stored in the request context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.HeaderXRequestID)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(constants.HeaderXRequestID, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// WithRequestID stores id in ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id, or "" if none was assigned
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
