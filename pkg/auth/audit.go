package auth

import (
	"net"
	"net/http"
	"strings"

	"github.com/platinummonkey/chatterbox/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Audit actions
const (
	ActionSignup           = "auth.signup"
	ActionSignin           = "auth.signin"
	ActionTokenRejected    = "auth.token_rejected"
	ActionMembershipDenied = "chat.membership_denied"
)

// Audit statuses
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Rejection reasons, used as the metric label
const (
	ReasonMissingHeader   = "missing_header"
	ReasonMalformedHeader = "malformed_header"
	ReasonInvalidToken    = "invalid_token"
	ReasonExpiredToken    = "expired_token"
	ReasonNotMember       = "not_member"
	ReasonMembershipError = "membership_error"
)

// AuditEvent is one security relevant event.
type AuditEvent struct {
	Action  string
	Status  string
	Reason  string
	UserID  int64
	ChatID  int64
	Email   string
	Subject string
	Err     error
}

// AuditLogger writes security events to the structured log.
type AuditLogger struct {
	logger     *observability.Logger
	rejections *prometheus.CounterVec
}

// NewAuditLogger creates an audit logger. rejections may be nil.
func NewAuditLogger(logger *observability.Logger, rejections *prometheus.CounterVec) *AuditLogger {
	return &AuditLogger{
		logger:     logger.WithField("component", "audit"),
		rejections: rejections,
	}
}

// LogFromRequest records event with the caller's address and user agent.
func (al *AuditLogger) LogFromRequest(r *http.Request, event AuditEvent) {
	fields := map[string]interface{}{
		"action":     event.Action,
		"status":     event.Status,
		"ip_address": getClientIP(r),
		"user_agent": r.UserAgent(),
	}
	if requestID := observability.GetRequestID(r.Context()); requestID != "" {
		fields["request_id"] = requestID
	}
	if event.Reason != "" {
		fields["reason"] = event.Reason
	}
	if event.UserID != 0 {
		fields["user_id"] = event.UserID
	}
	if event.ChatID != 0 {
		fields["chat_id"] = event.ChatID
	}
	if event.Email != "" {
		fields["email"] = event.Email
	}
	if event.Subject != "" {
		fields["token"] = event.Subject
	}

	log := al.logger.WithFields(fields).WithError(event.Err)
	if event.Status == StatusSuccess {
		log.Info("audit event")
	} else {
		log.Warn("audit event")
	}

	if al.rejections != nil && event.Status == StatusFailure && event.Reason != "" {
		al.rejections.WithLabelValues(event.Reason).Inc()
	}
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
