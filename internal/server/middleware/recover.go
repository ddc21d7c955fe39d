package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// ErrorHandler renders a failed request. It is the same hook the router
// hands handler errors to, so middleware failures share one JSON shape.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// PanicError carries a recovered panic value
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RecoverMiddleware turns a panic anywhere below it into an error for
// onError. http.ErrAbortHandler is re-raised so net/http can drop the
// connection quietly.
func RecoverMiddleware(logger *zap.Logger, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := debug.Stack()
				logger.Error("Recovered from panic",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.ByteString("stack", stack),
				)
				onError(w, r, &PanicError{Value: rec, Stack: stack})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
