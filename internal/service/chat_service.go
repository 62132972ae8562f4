package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loanmate-platform/loanmate-api/internal/domain"
	"github.com/loanmate-platform/loanmate-api/internal/repository/ports"
)

// ChatService persists chatbot transcripts. The bot itself runs in the
// frontend; this side only records the exchange.
type ChatService struct {
	conversations ports.ConversationRepository

	now func() time.Time
}

type ConversationPage struct {
	Conversations []domain.Conversation
	Current       int
	TotalPages    int
	Count         int
}

func NewChatService(conversations ports.ConversationRepository) *ChatService {
	return &ChatService{
		conversations: conversations,
		now:           time.Now,
	}
}

type StartConversationInput struct {
	SessionID string
	UserEmail *string
	UserAgent *string
	IPAddress *string
	UserID    *uuid.UUID
}

// Start returns the conversation for the session, creating it on first
// contact and bumping last_activity on repeats.
func (s *ChatService) Start(ctx context.Context, in StartConversationInput) (*domain.Conversation, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrConversationNotFound
	}

	existing, err := s.conversations.FindBySessionID(ctx, sessionID)
	if err == nil {
		if err := s.conversations.TouchActivity(ctx, sessionID, s.now()); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	conv := &domain.Conversation{
		SessionID: sessionID,
		UserEmail: in.UserEmail,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		UserID:    in.UserID,
	}
	return s.conversations.Create(ctx, conv)
}

// AppendMessage stores one transcript line. A missing messageID gets a
// generated one so the frontend can reconcile optimistic UI state.
func (s *ChatService) AppendMessage(ctx context.Context, sessionID string, msgType domain.MessageType, content, messageID string) (*domain.ChatMessage, error) {
	if !msgType.Valid() {
		return nil, ErrMessageTypeInvalid
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrMessageTypeInvalid
	}

	conv, err := s.conversations.FindBySessionID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(messageID) == "" {
		messageID = uuid.NewString()
	}

	msg := &domain.ChatMessage{
		MessageID: messageID,
		Type:      msgType,
		Content:   content,
	}
	stored, err := s.conversations.AppendMessage(ctx, conv.ID, msg)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.TouchActivity(ctx, sessionID, s.now()); err != nil {
		return nil, err
	}
	return stored, nil
}

// Get loads a conversation with its full transcript.
func (s *ChatService) Get(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	conv, err := s.conversations.FindBySessionID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	messages, err := s.conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	conv.Messages = messages
	return conv, nil
}

func (s *ChatService) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) (*ConversationPage, error) {
	page, limit = normalizePagination(page, limit, 10)

	conversations, err := s.conversations.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.conversations.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return newConversationPage(conversations, page, limit, total), nil
}

func (s *ChatService) ListAll(ctx context.Context, search string, page, limit int) (*ConversationPage, error) {
	page, limit = normalizePagination(page, limit, 20)
	search = strings.TrimSpace(search)

	conversations, err := s.conversations.List(ctx, search, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.conversations.Count(ctx, search)
	if err != nil {
		return nil, err
	}

	return newConversationPage(conversations, page, limit, total), nil
}

func (s *ChatService) End(ctx context.Context, sessionID string) error {
	if err := s.conversations.End(ctx, sessionID, s.now()); err != nil {
		if isNotFound(err) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

func (s *ChatService) Delete(ctx context.Context, sessionID string) error {
	if err := s.conversations.Delete(ctx, sessionID); err != nil {
		if isNotFound(err) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

func normalizePagination(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}

func newConversationPage(conversations []domain.Conversation, page, limit int, total int64) *ConversationPage {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ConversationPage{
		Conversations: conversations,
		Current:       page,
		TotalPages:    totalPages,
		Count:         len(conversations),
	}
}
