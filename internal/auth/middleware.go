package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
	"github.com/leslieo2/hotel-booking-mock/internal/router"
)

type claimsKey struct{}

// RequireToken rejects requests without a valid bearer token and stores
// the token claims in the request context
func RequireToken(jwtManager *JWTManager) router.Middleware {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			header := r.Header.Get(constants.HeaderAuthorization)
			if header == "" {
				return apierror.Unauthorized("Authorization header is required")
			}
			if len(header) < len(constants.BearerPrefix) || !strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
				return apierror.Unauthorized("Authorization header must use the Bearer scheme")
			}
			token := strings.TrimSpace(header[len(constants.BearerPrefix):])
			if token == "" {
				return apierror.Unauthorized("Bearer token is empty")
			}

			claims, err := jwtManager.ValidateToken(token)
			if err != nil {
				e := apierror.Unauthorized("Invalid or expired token")
				e.Err = err
				return e
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			return next(w, r.WithContext(ctx))
		}
	}
}

// ClaimsFromContext returns the claims stored by RequireToken
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}
