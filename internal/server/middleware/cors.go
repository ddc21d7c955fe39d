package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// CORSMiddleware answers preflight requests and decorates responses with
// the configured cross-origin policy
type CORSMiddleware struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(cfg config.CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
}

// Handler returns the CORS middleware handler
func (c *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get(constants.HeaderOrigin)

		if allowOrigin := c.allowOrigin(origin); allowOrigin != "" {
			h.Set(constants.HeaderAccessControlAllowOrigin, allowOrigin)
			if allowOrigin != "*" {
				h.Add(constants.HeaderVary, constants.HeaderOrigin)
			}
			if c.AllowCredentials {
				h.Set(constants.HeaderAccessControlAllowCredentials, "true")
			}
		}

		if r.Method != constants.MethodOPTIONS {
			next.ServeHTTP(w, r)
			return
		}

		// Preflight
		if len(c.AllowedMethods) > 0 {
			h.Set(constants.HeaderAccessControlAllowMethods, strings.Join(c.AllowedMethods, ","))
		}
		if len(c.AllowedHeaders) > 0 {
			h.Set(constants.HeaderAccessControlAllowHeaders, strings.Join(c.AllowedHeaders, ","))
		} else if requested := r.Header.Get(constants.HeaderAccessControlRequestHeaders); requested != "" {
			h.Set(constants.HeaderAccessControlAllowHeaders, requested)
			h.Add(constants.HeaderVary, constants.HeaderAccessControlRequestHeaders)
		}
		if c.MaxAge > 0 {
			h.Set(constants.HeaderAccessControlMaxAge, strconv.Itoa(c.MaxAge))
		}
		h.Set(constants.HeaderContentLength, "0")
		w.WriteHeader(http.StatusNoContent)
	})
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not allowed. A wildcard is echoed back as the
// request origin when credentials are allowed, since browsers reject "*"
// with credentials.
func (c *CORSMiddleware) allowOrigin(origin string) string {
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" {
			if c.AllowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
		if origin != "" && allowed == origin {
			return origin
		}
	}
	return ""
}
