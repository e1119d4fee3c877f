package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/moderation"
	"github.com/google/uuid"
)

// chatContextTurns is how many earlier messages are sent with a question.
const chatContextTurns = 20

// Moderator screens chat text before it reaches the model.
type Moderator interface {
	Check(text string) (string, error)
	Redact(text string) string
}

var _ Moderator = (*moderation.Filter)(nil)

type ChatService struct {
	users  UserRepository
	chats  ChatRepository
	limits Limits
	ai     Inference
	filter Moderator
	now    func() time.Time
}

func NewChatService(users UserRepository, chats ChatRepository, limits Limits, inference Inference, filter Moderator) *ChatService {
	return &ChatService{users: users, chats: chats, limits: limits, ai: inference, filter: filter, now: time.Now}
}

// Send asks the botanist assistant a question. Only answered questions are
// stored, so a failed model call does not use up the daily allowance.
func (s *ChatService) Send(ctx context.Context, userID uuid.UUID, message string) (*dto.ChatResponse, error) {
	text, err := s.filter.Check(message)
	if err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	decision, err := s.limits.CanChat(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	history, err := s.chats.ChatHistory(ctx, userID, chatContextTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	turns := make([]ai.ChatTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.ChatTurn{Role: m.Role, Content: s.filter.Redact(m.Content)})
	}

	reply, err := s.ai.Chat(ctx, turns, s.filter.Redact(text))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	question := &models.ChatMessage{UserID: userID, Role: models.ChatRoleUser, Content: text, CreatedAt: now}
	answer := &models.ChatMessage{UserID: userID, Role: models.ChatRoleAssistant, Content: reply, CreatedAt: now.Add(time.Millisecond)}
	if err := s.chats.AppendChat(ctx, question, answer); err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}

	resp := &dto.ChatResponse{Reply: answer, Unlimited: decision.Unlimited, Remaining: -1}
	if !decision.Unlimited {
		resp.Remaining = max(decision.Remaining-1, 0)
	}
	return resp, nil
}

func (s *ChatService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	msgs, err := s.chats.ChatHistory(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}
