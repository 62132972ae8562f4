package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes visitor messages from chatbot replies.
type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeBot  MessageType = "bot"
)

func (t MessageType) Valid() bool {
	return t == MessageTypeUser || t == MessageTypeBot
}

// Conversation is one chatbot session. Anonymous visitors leave UserID nil;
// the session is identified by the client-generated SessionID.
type Conversation struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	SessionID    string     `db:"session_id" json:"session_id"`
	UserID       *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	UserEmail    *string    `db:"user_email" json:"user_email,omitempty"`
	UserAgent    *string    `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string    `db:"ip_address" json:"ip_address,omitempty"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	LastActivity time.Time  `db:"last_activity" json:"last_activity"`
	IsActive     bool       `db:"is_active" json:"is_active"`

	Messages []ChatMessage `db:"-" json:"messages,omitempty"`
}

type ChatMessage struct {
	ID             int64       `db:"id" json:"-"`
	ConversationID uuid.UUID   `db:"conversation_id" json:"-"`
	MessageID      string      `db:"message_id" json:"message_id"`
	Type           MessageType `db:"type" json:"type"`
	Content        string      `db:"content" json:"content"`
	CreatedAt      time.Time   `db:"created_at" json:"timestamp"`
}
