package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/contextkeys"
	"github.com/platinummonkey/chatterbox/pkg/httputil"
)

// TokenVerifier checks a bearer token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// IdentityHandler serves requests that already carry a verified identity.
type IdentityHandler interface {
	ServeIdentity(w http.ResponseWriter, r *http.Request, identity auth.Identity)
}

// IdentityHandlerFunc adapts a function to IdentityHandler.
type IdentityHandlerFunc func(w http.ResponseWriter, r *http.Request, identity auth.Identity)

// ServeIdentity calls f(w, r, identity).
func (f IdentityHandlerFunc) ServeIdentity(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	f(w, r, identity)
}

// Identified adapts a plain handler. The identity stays reachable through IdentityFromContext.
func Identified(next http.Handler) IdentityHandler {
	return IdentityHandlerFunc(func(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
		next.ServeHTTP(w, r)
	})
}

// Authenticator turns a bearer token into an identity.
//
//	no Authorization header      -> 401
//	header not "Bearer <token>"  -> 401
//	token fails verification     -> 403
//	verified                     -> next.ServeIdentity
type Authenticator struct {
	verifier TokenVerifier
	audit    *auth.AuditLogger
}

// NewAuthenticator creates an authenticator. audit may be nil.
func NewAuthenticator(verifier TokenVerifier, audit *auth.AuditLogger) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		audit:    audit,
	}
}

// Wrap returns the authenticated handler. Only identity aware handlers can be wrapped,
// so anything that needs an identity runs after the token check.
func (a *Authenticator) Wrap(next IdentityHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			a.reject(r, auth.ReasonMissingHeader, "", nil)
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			a.reject(r, auth.ReasonMalformedHeader, "", nil)
			httputil.WriteUnauthorized(w, "invalid authorization header")
			return
		}

		identity, err := a.verifier.Verify(token)
		if err != nil {
			reason := auth.ReasonInvalidToken
			if errors.Is(err, auth.ErrExpiredToken) {
				reason = auth.ReasonExpiredToken
			}
			a.reject(r, reason, token, err)
			httputil.WriteForbidden(w, "invalid token")
			return
		}

		ctx := contextkeys.WithIdentity(r.Context(), identity)
		ctx = contextkeys.WithUserID(ctx, strconv.FormatInt(identity.ID, 10))
		next.ServeIdentity(w, r.WithContext(ctx), identity)
	})
}

func (a *Authenticator) reject(r *http.Request, reason, token string, err error) {
	if a.audit == nil {
		return
	}
	a.audit.LogFromRequest(r, auth.AuditEvent{
		Action:  auth.ActionTokenRejected,
		Status:  auth.StatusFailure,
		Reason:  reason,
		Subject: token,
		Err:     err,
	})
}

// bearerToken extracts <token> from "Bearer <token>". The scheme is case insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// IdentityFromContext returns the identity attached by Authenticator.
func IdentityFromContext(r *http.Request) (auth.Identity, bool) {
	identity, ok := r.Context().Value(contextkeys.IdentityKey).(auth.Identity)
	return identity, ok
}
