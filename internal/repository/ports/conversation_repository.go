package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loanmate-platform/loanmate-api/internal/domain"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error)
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Conversation, error)
	TouchActivity(ctx context.Context, sessionID string, at time.Time) error
	AppendMessage(ctx context.Context, conversationID uuid.UUID, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.ChatMessage, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Conversation, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	List(ctx context.Context, search string, limit, offset int) ([]domain.Conversation, error)
	Count(ctx context.Context, search string) (int64, error)
	End(ctx context.Context, sessionID string, at time.Time) error
	Delete(ctx context.Context, sessionID string) error
}
