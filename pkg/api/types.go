package api

import (
	"context"
	"io"
	"os"

	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/storage"
	"github.com/platinummonkey/chatterbox/pkg/storage/postgres"
)

// Store is the persistence the handlers need. *postgres.PostgresStorage implements it.
type Store interface {
	CreateUser(ctx context.Context, input postgres.SignupInput) (*postgres.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*auth.Identity, error)
	ListWorkspaceUsers(ctx context.Context, workspaceID int64) ([]postgres.ChatUser, error)

	CreateChat(ctx context.Context, workspaceID int64, input postgres.ChatInput) (*postgres.Chat, error)
	GetChat(ctx context.Context, workspaceID, id int64) (*postgres.Chat, error)
	ListChats(ctx context.Context, workspaceID int64) ([]postgres.Chat, error)
	IsChatMember(ctx context.Context, chatID, userID int64) (bool, error)

	CreateMessage(ctx context.Context, chatID int64, sender auth.Identity, input postgres.MessageInput) (*postgres.Message, error)
	ListMessages(ctx context.Context, chatID int64, input postgres.ListMessagesInput) ([]postgres.Message, error)
}

// FileStore holds uploaded attachments. *storage.FileSystemStorage implements it.
type FileStore interface {
	Save(ctx context.Context, workspaceID int64, filename string, r io.Reader) (storage.Descriptor, error)
	Open(d storage.Descriptor) (*os.File, error)
}

// SigninInput is the signin request.
type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthOutput is returned by signup and signin.
type AuthOutput struct {
	Token string `json:"token"`
}
