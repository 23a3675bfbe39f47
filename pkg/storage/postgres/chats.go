package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	minChatMembers    = 2
	maxUnnamedMembers = 8
	chatColumns       = "id, ws_id, name, type, members, created_at"
)

func scanChat(row rowScanner) (*Chat, error) {
	var (
		c       Chat
		name    sql.NullString
		members pq.Int64Array
	)
	if err := row.Scan(&c.ID, &c.WorkspaceID, &name, &c.Type, &members, &c.CreatedAt); err != nil {
		return nil, err
	}
	if name.Valid {
		c.Name = &name.String
	}
	c.Members = []int64(members)
	return &c, nil
}

// chatType derives the chat kind from its name, size and visibility.
func chatType(input ChatInput) ChatType {
	switch {
	case input.Name == nil && len(input.Members) == minChatMembers:
		return ChatTypeSingle
	case input.Name == nil:
		return ChatTypeGroup
	case input.Public:
		return ChatTypePublicChannel
	default:
		return ChatTypePrivateChannel
	}
}

func validateChatInput(input ChatInput) error {
	if len(input.Members) < minChatMembers {
		return validationf("members length must be greater than 1")
	}
	if len(input.Members) > maxUnnamedMembers && input.Name == nil {
		return validationf("group chat with more than %d members must have a name", maxUnnamedMembers)
	}
	if input.Name != nil && *input.Name == "" {
		return validationf("chat name must not be empty")
	}
	seen := make(map[int64]struct{}, len(input.Members))
	for _, id := range input.Members {
		if _, dup := seen[id]; dup {
			return validationf("member %d is listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// CreateChat creates a chat in workspaceID. Every member must be a user of that workspace.
func (s *PostgresStorage) CreateChat(ctx context.Context, workspaceID int64, input ChatInput) (*Chat, error) {
	if err := validateChatInput(input); err != nil {
		return nil, err
	}

	var found int
	countQuery := `SELECT COUNT(*) FROM users WHERE id = ANY($1) AND ws_id = $2`
	if err := s.db.QueryRowContext(ctx, countQuery, pq.Array(input.Members), workspaceID).Scan(&found); err != nil {
		return nil, fmt.Errorf("failed to check chat members: %w", err)
	}
	if found != len(input.Members) {
		return nil, validationf("some members do not exist")
	}

	query := `
		INSERT INTO chats (ws_id, name, type, members)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + chatColumns

	chat, err := scanChat(s.db.QueryRowContext(ctx, query,
		workspaceID, input.Name, chatType(input), pq.Array(input.Members)))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat, nil
}

// GetChat returns ErrNotFound when the chat does not exist in workspaceID.
func (s *PostgresStorage) GetChat(ctx context.Context, workspaceID, id int64) (*Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = $1 AND ws_id = $2`

	chat, err := scanChat(s.db.QueryRowContext(ctx, query, id, workspaceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return chat, nil
}

// ListChats returns every chat of a workspace ordered by id.
func (s *PostgresStorage) ListChats(ctx context.Context, workspaceID int64) ([]Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE ws_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := []Chat{}
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chats: %w", err)
	}
	return chats, nil
}

// IsChatMember reports whether userID is listed in the members of chatID.
// A missing chat is not an error.
func (s *PostgresStorage) IsChatMember(ctx context.Context, chatID, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM chats WHERE id = $1 AND $2 = ANY(members))`

	var member bool
	if err := s.db.QueryRowContext(ctx, query, chatID, userID).Scan(&member); err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return member, nil
}
