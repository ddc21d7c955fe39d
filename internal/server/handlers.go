package server

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/binding"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
	"github.com/leslieo2/hotel-booking-mock/internal/observability"
	"github.com/leslieo2/hotel-booking-mock/internal/server/middleware"
)

// healthHandler answers liveness checks. It has no side effects and
// cannot fail.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) error {
	return binding.JSON(w, http.StatusOK, observability.NewHealthStatus(s.now()))
}

// readinessHandler reports 503 until a non-empty catalog is loaded
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) error {
	catalogReady, _ := s.hotels.Ready()

	status := observability.ReadinessStatus{
		Status:    "ready",
		Timestamp: observability.FormatTimestamp(s.now()),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Checks: map[string]bool{
			"catalog": catalogReady,
			"auth":    s.auth != nil,
		},
	}
	code := http.StatusOK
	if !catalogReady || s.auth == nil {
		status.Status = "not ready"
		code = http.StatusServiceUnavailable
	}

	s.logger.Debug("Readiness check completed",
		zap.String("path", r.URL.Path),
		zap.Bool("ready", code == http.StatusOK),
	)
	return binding.JSON(w, code, status)
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) error {
	s.metrics.Handler().ServeHTTP(w, r)
	return nil
}

func (s *Server) openAPIHandler(w http.ResponseWriter, r *http.Request) error {
	s.docs.ServeHTTP(w, r)
	return nil
}

type endpointInfo struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary,omitempty"`
}

// indexHandler lists every registered endpoint
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) error {
	routes := s.router.Routes()
	endpoints := make([]endpointInfo, 0, len(routes))
	for _, route := range routes {
		endpoints = append(endpoints, endpointInfo{
			Method:  route.Method,
			Path:    displayPath(route.Path),
			Summary: s.docs.Summary(route.Method, route.Path),
		})
	}

	return binding.JSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     constants.ServiceName,
		"version":     constants.ServiceVersion,
		"environment": s.config.Environment,
		"endpoints":   endpoints,
		"docs":        constants.PathOpenAPI,
	})
}

// displayPath drops the exact-match marker from a mux pattern
func displayPath(pattern string) string {
	if p := strings.TrimSuffix(pattern, "{$}"); p != "" {
		return p
	}
	return "/"
}

// handleError is the terminal error handler shared by the router and the
// middleware chain. Every failure ends here and is rendered as the JSON
// error body.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierror.From(err)
	requestID := middleware.RequestIDFromContext(r.Context())

	fields := []zap.Field{
		zap.Int("status_code", apiErr.Status),
		zap.String("code", apiErr.Code),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID),
		zap.Error(err),
	}
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", fields...)
	} else {
		s.logger.Debug("Request rejected", fields...)
	}

	if rw, ok := w.(*middleware.ResponseWriter); ok && rw.Written() {
		// The handler already started its response; a second body would
		// corrupt it
		return
	}

	apierror.WriteJSON(w, apiErr.Status, apierror.NewBody(
		apiErr,
		r.URL.Path,
		requestID,
		observability.FormatTimestamp(s.now()),
		s.config.IsDevelopment(),
	))
}
