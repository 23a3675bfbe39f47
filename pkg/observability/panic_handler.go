package observability

import (
	"runtime/debug"
)

// RecoverPanic logs a recovered panic of a background goroutine and lets the
// goroutine end. It must be called directly by defer:
//
//	go func() {
//	    defer observability.RecoverPanic(logger, "http server")
//	    ...
//	}()
//
// Request handlers are covered by httputil.RecoveryMiddleware instead.
func RecoverPanic(logger *Logger, component string) {
	rec := recover()
	if rec == nil {
		return
	}
	logger.WithFields(map[string]interface{}{
		"panic":     rec,
		"component": component,
		"stack":     string(debug.Stack()),
	}).Error("panic recovered in background goroutine")
}
