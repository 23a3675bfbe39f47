package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/httputil"
)

// DefaultChatParam is the route variable holding the chat id.
const DefaultChatParam = "id"

// MembershipChecker reports whether a user belongs to a chat.
type MembershipChecker interface {
	IsChatMember(ctx context.Context, chatID, userID int64) (bool, error)
}

// ChatMembership admits only members of the chat named in the route.
// A checker error is a denial.
type ChatMembership struct {
	checker MembershipChecker
	audit   *auth.AuditLogger
	param   string
}

// NewChatMembership creates the membership gate reading DefaultChatParam. audit may be nil.
func NewChatMembership(checker MembershipChecker, audit *auth.AuditLogger) *ChatMembership {
	return &ChatMembership{
		checker: checker,
		audit:   audit,
		param:   DefaultChatParam,
	}
}

// WithParam returns a copy reading the chat id from route variable name.
func (m *ChatMembership) WithParam(name string) *ChatMembership {
	c := *m
	c.param = name
	return &c
}

// Wrap takes and returns an IdentityHandler, so the gate can only sit inside Authenticator.Wrap.
func (m *ChatMembership) Wrap(next IdentityHandler) IdentityHandler {
	return IdentityHandlerFunc(func(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
		chatID, ok := httputil.ParsePathInt64OrError(w, r, m.param)
		if !ok {
			return
		}

		member, err := m.checker.IsChatMember(r.Context(), chatID, identity.ID)
		if err != nil || !member {
			reason := auth.ReasonNotMember
			if err != nil {
				reason = auth.ReasonMembershipError
			}
			if m.audit != nil {
				m.audit.LogFromRequest(r, auth.AuditEvent{
					Action: auth.ActionMembershipDenied,
					Status: auth.StatusFailure,
					Reason: reason,
					UserID: identity.ID,
					ChatID: chatID,
					Err:    err,
				})
			}
			httputil.WriteForbidden(w, fmt.Sprintf("user %d is not member of chat %d", identity.ID, chatID))
			return
		}

		next.ServeIdentity(w, r, identity)
	})
}
