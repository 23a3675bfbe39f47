package httputil

import (
	"net/http"
	"runtime/debug"

	"github.com/platinummonkey/chatterbox/pkg/observability"
)

// RecoveryMiddleware turns a handler panic into a generic 500. The panic is
// logged through the request scoped logger when AccessLog set one, so the
// entry carries the request id. http.ErrAbortHandler is re-raised for
// net/http to handle.
func RecoveryMiddleware(logger *observability.Logger) func(http.Handler) http.Handler {
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

				log := logger
				if observability.HasLogger(r.Context()) {
					log = observability.FromContext(r.Context())
				}
				log.WithFields(map[string]interface{}{
					"panic":  rec,
					"stack":  string(debug.Stack()),
					"method": r.Method,
					"path":   r.URL.Path,
				}).Error("panic recovered in handler")
				WriteInternalError(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain composes middlewares; the first one is outermost.
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// MaxBytesMiddleware caps the request body; reads past the cap fail with
// *http.MaxBytesError.
func MaxBytesMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
