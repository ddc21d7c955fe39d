package server

import (
	"net/http"

	"github.com/leslieo2/hotel-booking-mock/internal/server/middleware"
)

// applyMiddleware wraps handler in the full chain. Middleware is applied in
// reverse, so the last one wrapped runs first:
//
//	request id → security headers → CORS → access log → metrics/tracing →
//	recover → rate limit → body parser → mock latency → router
//
// Recover sits inside the access log so a recovered panic is logged with
// the 500 it was turned into.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	handler = middleware.DelayMiddleware(s.logger)(handler)

	handler = middleware.BodyParserMiddleware(middleware.BodyParserConfig{
		MaxJSONSize:   s.config.Server.MaxBodySize,
		MaxFormSize:   s.config.Server.MaxFormSize,
		MaxFormParams: middleware.DefaultMaxFormParams,
	}, s.handleError)(handler)

	handler = s.rateLimiter.Middleware(handler)
	handler = middleware.RecoverMiddleware(s.logger, s.handleError)(handler)
	handler = middleware.InstrumentMiddleware(s.metrics, s.tracer)(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)

	if s.config.Security.CORS.Enabled {
		handler = middleware.NewCORSMiddleware(s.config.Security.CORS).Handler(handler)
	}

	handler = middleware.SecurityHeadersMiddleware(s.config.Security.Headers, s.handleError)(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}
