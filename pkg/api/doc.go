// Package api is the HTTP surface of the chat server.
//
// # Routes
//
//	POST /api/signup                 public, 201 {"token": ...}
//	POST /api/signin                 public, 200 {"token": ...} or 403
//	GET  /api/users                  authenticated, users of the caller's workspace
//	GET  /api/chats                  authenticated
//	POST /api/chats                  authenticated, 201
//	GET  /api/chats/{id}             authenticated, 404 outside the workspace
//	GET  /api/chats/{id}/messages    chat members, ?last_id=&limit=
//	POST /api/chats/{id}/messages    chat members, 201
//	POST /api/upload                 authenticated, multipart, returns reference URLs
//	GET  /api/files/{ws}/{path}      authenticated, own workspace only
//	GET  /health/live, /health/ready
//	GET  /metrics
//
// Every error body is {"error": "..."}. Store errors are mapped to apperr
// kinds in classify; server side failures return a generic message and are
// logged with their cause.
//
// # Middleware order
//
// Outermost first: otelhttp, RequestID, ServerTime, AccessLog, Recovery, then
// the router with the HTTP metrics middleware. Authentication and membership
// are attached per route.
package api
