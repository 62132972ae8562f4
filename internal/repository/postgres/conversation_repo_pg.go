package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/loanmate-platform/loanmate-api/internal/domain"
)

type ConversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepo(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

const conversationColumns = `id, session_id, user_id, user_email, user_agent, ip_address, started_at, last_activity, is_active`

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	const query = `
        INSERT INTO conversation (session_id, user_id, user_email, user_agent, ip_address)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + conversationColumns
	row := r.db.QueryRowxContext(ctx, query, conv.SessionID, conv.UserID, conv.UserEmail, conv.UserAgent, conv.IPAddress)
	var created domain.Conversation
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ConversationRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	const query = `
        SELECT ` + conversationColumns + `
        FROM conversation
        WHERE session_id = $1
    `
	var conv domain.Conversation
	if err := r.db.GetContext(ctx, &conv, query, sessionID); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	const query = `
        UPDATE conversation SET last_activity = $2
        WHERE session_id = $1
    `
	_, err := r.db.ExecContext(ctx, query, sessionID, at)
	return err
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, conversationID uuid.UUID, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	const query = `
        INSERT INTO conversation_message (conversation_id, message_id, type, content)
        VALUES ($1, $2, $3, $4)
        RETURNING id, conversation_id, message_id, type, content, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, conversationID, msg.MessageID, msg.Type, msg.Content)
	var stored domain.ChatMessage
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, conversation_id, message_id, type, content, created_at
        FROM conversation_message
        WHERE conversation_id = $1
        ORDER BY created_at ASC, id ASC
    `
	messages := []domain.ChatMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, conversationID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Conversation, error) {
	const query = `
        SELECT ` + conversationColumns + `
        FROM conversation
        WHERE user_id = $1
        ORDER BY last_activity DESC
        LIMIT $2 OFFSET $3
    `
	conversations := []domain.Conversation{}
	if err := r.db.SelectContext(ctx, &conversations, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *ConversationRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM conversation WHERE user_id = $1`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ConversationRepository) List(ctx context.Context, search string, limit, offset int) ([]domain.Conversation, error) {
	conversations := []domain.Conversation{}
	if search == "" {
		const query = `
            SELECT ` + conversationColumns + `
            FROM conversation
            ORDER BY last_activity DESC
            LIMIT $1 OFFSET $2
        `
		if err := r.db.SelectContext(ctx, &conversations, query, limit, offset); err != nil {
			return nil, err
		}
		return conversations, nil
	}

	const query = `
        SELECT ` + conversationColumns + `
        FROM conversation
        WHERE session_id ILIKE '%' || $1 || '%' OR user_email ILIKE '%' || $1 || '%'
        ORDER BY last_activity DESC
        LIMIT $2 OFFSET $3
    `
	if err := r.db.SelectContext(ctx, &conversations, query, search, limit, offset); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *ConversationRepository) Count(ctx context.Context, search string) (int64, error) {
	var total int64
	if search == "" {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM conversation`); err != nil {
			return 0, err
		}
		return total, nil
	}
	const query = `
        SELECT COUNT(*) FROM conversation
        WHERE session_id ILIKE '%' || $1 || '%' OR user_email ILIKE '%' || $1 || '%'
    `
	if err := r.db.GetContext(ctx, &total, query, search); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ConversationRepository) End(ctx context.Context, sessionID string, at time.Time) error {
	const query = `
        UPDATE conversation SET is_active = false, last_activity = $2
        WHERE session_id = $1
    `
	res, err := r.db.ExecContext(ctx, query, sessionID, at)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *ConversationRepository) Delete(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM conversation WHERE session_id = $1`
	res, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
