package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/platinummonkey/chatterbox/pkg/auth"
)

func serveMembership(gate *ChatMembership, vars map[string]string, identity auth.Identity) *httptest.ResponseRecorder {
	reached := IdentityHandlerFunc(func(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
		w.WriteHeader(http.StatusOK)
	})

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), vars)
	w := httptest.NewRecorder()
	gate.Wrap(reached).ServeIdentity(w, req, identity)
	return w
}

func TestChatMembership(t *testing.T) {
	member := auth.Identity{ID: 1, WorkspaceID: 1}
	stranger := auth.Identity{ID: 9, WorkspaceID: 1}
	checker := &stubMembership{members: map[[2]int64]bool{{5, 1}: true}}

	t.Run("member passes", func(t *testing.T) {
		w := serveMembership(NewChatMembership(checker, nil), map[string]string{"id": "5"}, member)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non member denied", func(t *testing.T) {
		var buf bytes.Buffer
		audit, rejections := newTestAudit(&buf)

		w := serveMembership(NewChatMembership(checker, audit), map[string]string{"id": "5"}, stranger)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "user 9 is not member of chat 5", errorBody(t, w))
		assert.Equal(t, float64(1), testutil.ToFloat64(rejections.WithLabelValues(auth.ReasonNotMember)))
	})

	t.Run("bad chat id", func(t *testing.T) {
		w := serveMembership(NewChatMembership(checker, nil), map[string]string{"id": "abc"}, member)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lookup error denies", func(t *testing.T) {
		var buf bytes.Buffer
		audit, rejections := newTestAudit(&buf)
		failing := &stubMembership{err: errors.New("connection refused")}

		w := serveMembership(NewChatMembership(failing, audit), map[string]string{"id": "5"}, member)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "user 1 is not member of chat 5", errorBody(t, w))
		assert.Equal(t, float64(1), testutil.ToFloat64(rejections.WithLabelValues(auth.ReasonMembershipError)))
		assert.Contains(t, buf.String(), "connection refused")
	})

	t.Run("custom param", func(t *testing.T) {
		gate := NewChatMembership(checker, nil).WithParam("chat_id")
		w := serveMembership(gate, map[string]string{"chat_id": "5"}, member)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
