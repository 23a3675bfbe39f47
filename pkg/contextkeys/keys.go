// Package contextkeys holds the typed keys for request scoped values.
//
// The package has no dependencies so that auth, middleware, observability
// and api can all share one key per value without import cycles. Values are
// stored as interface{} where the concrete type lives in a package that
// imports this one.
package contextkeys

import "context"

// Key is the context key type.
type Key string

const (
	// IdentityKey holds the auth.Identity verified by middleware.Authenticator.
	IdentityKey Key = "identity"
	// RequestIDKey holds the X-Request-ID value as a string.
	RequestIDKey Key = "request_id"
	// UserIDKey holds the verified user id in decimal.
	UserIDKey Key = "user_id"
	// LoggerKey holds the *observability.Logger set by middleware.AccessLog.
	LoggerKey Key = "logger"
)

func WithIdentity(ctx context.Context, identity interface{}) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetRequestID returns the request id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// GetUserID returns the user id, or "" before authentication.
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, UserIDKey)
}

func stringValue(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
