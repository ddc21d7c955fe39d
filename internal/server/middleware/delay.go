package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// DelayMiddleware simulates network latency when a request carries the
// __delay query parameter, e.g. ?__delay=250 or ?__delay=2s. Malformed
// values are ignored and delays are capped at constants.MaxDelayDuration.
func DelayMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			delayParam := r.URL.Query().Get(constants.QueryParamDelay)
			if delayParam == "" {
				next.ServeHTTP(w, r)
				return
			}

			delay, err := parseDelay(delayParam)
			if err != nil {
				logger.Warn("Invalid delay parameter",
					zap.String("delay", delayParam),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
			} else if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
				case <-r.Context().Done():
					timer.Stop()
					logger.Debug("Request cancelled during delay",
						zap.String("path", r.URL.Path),
						zap.Duration("delay", delay),
					)
					return
				}
				logger.Debug("Applied response delay",
					zap.String("path", r.URL.Path),
					zap.Duration("delay", delay),
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// parseDelay accepts bare milliseconds or a Go duration string
func parseDelay(delayStr string) (time.Duration, error) {
	delayStr = strings.TrimSpace(delayStr)

	if ms, err := strconv.Atoi(delayStr); err == nil {
		return clampDelay(time.Duration(ms) * time.Millisecond), nil
	}

	delay, err := time.ParseDuration(delayStr)
	if err != nil {
		return 0, err
	}
	return clampDelay(delay), nil
}

func clampDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if delay > constants.MaxDelayDuration {
		return constants.MaxDelayDuration
	}
	return delay
}
