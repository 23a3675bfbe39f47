package api

import (
	"net/http"

	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/httputil"
	"github.com/platinummonkey/chatterbox/pkg/storage/postgres"
)

// listUsers handles GET /api/users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	users, err := s.store.ListWorkspaceUsers(r.Context(), identity.WorkspaceID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, users)
}

// listChats handles GET /api/chats
func (s *Server) listChats(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	chats, err := s.store.ListChats(r.Context(), identity.WorkspaceID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, chats)
}

// createChat handles POST /api/chats
func (s *Server) createChat(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	var input postgres.ChatInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	chat, err := s.store.CreateChat(r.Context(), identity.WorkspaceID, input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteCreated(w, chat)
}

// getChat handles GET /api/chats/{id}. Chats of other workspaces are not found.
func (s *Server) getChat(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	chat, err := s.store.GetChat(r.Context(), identity.WorkspaceID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, chat)
}

// listMessages handles GET /api/chats/{id}/messages?last_id=&limit=
func (s *Server) listMessages(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	chatID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	lastID, ok := httputil.ParseQueryInt64OrError(w, r, "last_id", 0)
	if !ok {
		return
	}
	limit, ok := httputil.ParseQueryInt64OrError(w, r, "limit", postgres.DefaultMessageLimit)
	if !ok {
		return
	}

	input := postgres.ListMessagesInput{LastID: lastID, Limit: limit}
	messages, err := s.store.ListMessages(r.Context(), chatID, input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, messages)
}

// sendMessage handles POST /api/chats/{id}/messages
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	chatID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var input postgres.MessageInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	msg, err := s.store.CreateMessage(r.Context(), chatID, identity, input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteCreated(w, msg)
}
