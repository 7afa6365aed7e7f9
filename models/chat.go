package models

import "time"

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatTurn is one persisted line of an AI-coach conversation.
type ChatTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	GIF       *string   `json:"gif,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
