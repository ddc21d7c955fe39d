package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// SecurityHeadersMiddleware sets the hardening headers browsers honour and
// rejects requests for hosts outside AllowedHosts when that list is set
func SecurityHeadersMiddleware(cfg config.SecurityHeaders, onError ErrorHandler) func(http.Handler) http.Handler {
	hsts := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set("Origin-Agent-Cluster", "?1")
			h.Set("Referrer-Policy", "no-referrer")
			if cfg.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security", hsts)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Download-Options", "noopen")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
			h.Set("X-XSS-Protection", "0")

			if len(cfg.AllowedHosts) > 0 && !hostAllowed(r.Host, cfg.AllowedHosts) {
				onError(w, r, apierror.New(http.StatusForbidden, constants.ErrorCodeHostNotAllowed, "Host not allowed"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// hostAllowed matches host against allowed both with and without its port
func hostAllowed(host string, allowed []string) bool {
	bare := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		bare = h
	}
	for _, a := range allowed {
		if a == host || a == bare {
			return true
		}
	}
	return false
}
