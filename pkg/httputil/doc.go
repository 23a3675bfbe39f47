// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, chats)
//	httputil.WriteCreated(w, tokenResponse)
//
// Every error leaves the server as {"error": "..."}:
//
//	httputil.WriteUnauthorized(w, "missing bearer token")
//	httputil.WriteAppError(w, logger, apperr.New(apperr.Validation, "content is required"))
//
// WriteAppError maps the apperr.Kind to a status code and, for 5xx kinds,
// logs the cause and writes a generic body.
//
// # Request Parsing
//
//	var req signinRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return
//	}
//	chatID, ok := httputil.ParsePathInt64OrError(w, r, "id")
//	limit := httputil.ParseQueryInt64(r, "limit", 50)
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(32<<20),
//	)(router)
//
// # Related Packages
//
//   - pkg/middleware: authentication, chat membership, request ids
//   - pkg/apperr: error kinds
package httputil
