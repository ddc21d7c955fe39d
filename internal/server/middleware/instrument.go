package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/leslieo2/hotel-booking-mock/internal/observability"
	"github.com/leslieo2/hotel-booking-mock/internal/router"
)

// InstrumentMiddleware records request metrics and a server span per
// request. Both are labelled with the matched route pattern rather than
// the raw path to keep label cardinality bounded. Either collaborator may
// be nil.
func InstrumentMiddleware(metrics *observability.Metrics, tracer *observability.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			if metrics != nil {
				metrics.InFlightRequests.Inc()
				defer metrics.InFlightRequests.Dec()
			}

			r, pattern := router.CapturePattern(r)
			wrapped := NewResponseWriter(w)

			if tracer != nil && tracer.Enabled() {
				ctx, span := tracer.StartSpan(r.Context(), "HTTP "+r.Method,
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
					attribute.String("request.id", RequestIDFromContext(r.Context())),
				)
				defer func() {
					if p := pattern(); p != "" {
						span.SetName(p)
						span.SetAttributes(attribute.String("http.route", p))
					}
					span.SetAttributes(attribute.Int("http.response.status_code", wrapped.StatusCode()))
					if wrapped.StatusCode() >= http.StatusInternalServerError {
						span.SetStatus(codes.Error, http.StatusText(wrapped.StatusCode()))
					}
					span.End()
				}()
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(wrapped, r)

			if metrics != nil {
				route := pattern()
				if route == "" {
					route = router.UnmatchedRoute
				}
				reqSize := r.ContentLength
				if reqSize < 0 {
					reqSize = 0
				}
				metrics.RecordRequest(r.Method, route, wrapped.StatusCode(), time.Since(start), reqSize, wrapped.Size())
			}
		})
	}
}
