package postgres

import (
	"time"

	"github.com/platinummonkey/chatterbox/pkg/auth"
)

// Workspace is a tenant.
type Workspace struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a persisted user without the password hash.
type User struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"ws_id"`
	FullName    string    `json:"fullname"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identity returns the public identity embedded in tokens.
func (u *User) Identity() auth.Identity {
	return auth.Identity{
		ID:          u.ID,
		WorkspaceID: u.WorkspaceID,
		FullName:    u.FullName,
		Email:       u.Email,
	}
}

// ChatUser is the directory view of a user.
type ChatUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// ChatType is the chat_type enum.
type ChatType string

const (
	ChatTypeSingle         ChatType = "single"
	ChatTypeGroup          ChatType = "group"
	ChatTypePrivateChannel ChatType = "private_channel"
	ChatTypePublicChannel  ChatType = "public_channel"
)

// Chat is a conversation inside one workspace.
type Chat struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"ws_id"`
	Name        *string   `json:"name"`
	Type        ChatType  `json:"type"`
	Members     []int64   `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is one chat message. Files holds /files/ reference URLs.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupInput is the signup request.
type SignupInput struct {
	FullName  string `json:"fullname"`
	Email     string `json:"email"`
	Workspace string `json:"workspace"`
	Password  string `json:"password"`
}

// ChatInput is the create chat request.
type ChatInput struct {
	Name    *string `json:"name"`
	Members []int64 `json:"members"`
	Public  bool    `json:"public"`
}

// MessageInput is the create message request.
type MessageInput struct {
	Content string   `json:"content"`
	Files   []string `json:"files"`
}

// ListMessagesInput selects one page of messages.
// LastID 0 starts at the newest message.
type ListMessagesInput struct {
	LastID int64
	Limit  int64
}
