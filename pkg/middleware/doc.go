// Package middleware provides the HTTP middleware of the chat server.
//
// # Overview
//
// Authenticator verifies the bearer token and hands the identity to an
// IdentityHandler. ChatMembership is itself an IdentityHandler wrapper, so
// the membership gate only composes inside an authenticated chain:
//
//	authn := middleware.NewAuthenticator(keys.Verifier, audit)
//	member := middleware.NewChatMembership(cache, audit)
//	router.Handle("/api/chats/{id}/messages",
//		authn.Wrap(member.Wrap(middleware.IdentityHandlerFunc(listMessages))))
//
// # Status codes
//
//	missing or malformed Authorization header  401
//	token rejected by the verifier             403
//	chat id not an integer                     400
//	not a member, or membership lookup failed  403
//
// Rejection details (token, reason, cause) go to the audit log only.
//
// # Request metadata
//
// RequestID propagates or generates X-Request-ID (UUIDv7). ServerTime adds
// X-Server-Time with the handler duration in microseconds. AccessLog writes
// one structured line per request.
package middleware
