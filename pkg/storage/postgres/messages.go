package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/lib/pq"

	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/storage"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
	messageColumns      = "id, chat_id, sender_id, content, files, created_at"
)

func scanMessage(row rowScanner) (*Message, error) {
	var (
		m     Message
		files pq.StringArray
	)
	if err := row.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &files, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Files = []string(files)
	if m.Files == nil {
		m.Files = []string{}
	}
	return &m, nil
}

// CreateMessage stores a message from sender in chatID. Every file reference must parse,
// belong to the sender's workspace and already be stored. A reference that does not parse
// is returned as a *storage.ReferenceError.
func (s *PostgresStorage) CreateMessage(ctx context.Context, chatID int64, sender auth.Identity, input MessageInput) (*Message, error) {
	if input.Content == "" {
		return nil, validationf("content is empty")
	}

	files := input.Files
	if files == nil {
		files = []string{}
	}
	for _, ref := range files {
		d, err := storage.ParseURL(ref)
		if err != nil {
			return nil, err
		}
		if d.WorkspaceID != sender.WorkspaceID {
			return nil, validationf("file not in workspace: %s", ref)
		}
		exists, err := s.files.Exists(d)
		if err != nil {
			return nil, fmt.Errorf("failed to check file %s: %w", ref, err)
		}
		if !exists {
			return nil, validationf("file not exist: %s", ref)
		}
	}

	query := `
		INSERT INTO messages (chat_id, sender_id, content, files)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + messageColumns

	msg, err := scanMessage(s.db.QueryRowContext(ctx, query, chatID, sender.ID, input.Content, pq.Array(files)))
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return msg, nil
}

// ListMessages returns one page of chatID newest first, starting below input.LastID.
func (s *PostgresStorage) ListMessages(ctx context.Context, chatID int64, input ListMessagesInput) ([]Message, error) {
	lastID := input.LastID
	if lastID <= 0 {
		lastID = math.MaxInt64
	}
	limit := clampLimit(input.Limit)

	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE chat_id = $1 AND id < $2
		ORDER BY id DESC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, chatID, lastID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

func clampLimit(limit int64) int64 {
	switch {
	case limit <= 0:
		return DefaultMessageLimit
	case limit > MaxMessageLimit:
		return MaxMessageLimit
	default:
		return limit
	}
}
