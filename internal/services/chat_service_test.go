package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/entitlement"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/moderation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestChat(repo *memRepo, limits *mockLimits, inference *mockInference) *ChatService {
	svc := NewChatService(repo, repo, limits, inference, moderation.NewFilter())
	svc.now = fixedNow("2024-03-10T09:00:00Z")
	return svc
}

func TestChat_SendStoresBothMessages(t *testing.T) {
	repo := newMemRepo()
	user := repo.addUser(&models.User{Email: "a@example.com"})
	limits := new(mockLimits)
	limits.On("CanChat", mock.Anything, mock.Anything).Return(allowed, nil)
	inference := new(mockInference)
	inference.On("Chat", mock.Anything, mock.Anything, "Why are my fern's tips brown? Mail me at [email]").
		Return("Usually low humidity.", nil)

	resp, err := newTestChat(repo, limits, inference).
		Send(context.Background(), user.ID, "  Why are my fern's tips brown? Mail me at fern@example.com ")
	require.NoError(t, err)

	assert.Equal(t, "Usually low humidity.", resp.Reply.Content)
	assert.Equal(t, 3, resp.Remaining)
	assert.False(t, resp.Unlimited)
	require.Len(t, repo.chats, 2)
	assert.Equal(t, models.ChatRoleUser, repo.chats[0].Role)
	assert.Equal(t, "Why are my fern's tips brown? Mail me at fern@example.com", repo.chats[0].Content)
	assert.Equal(t, models.ChatRoleAssistant, repo.chats[1].Role)
	assert.True(t, repo.chats[1].CreatedAt.After(repo.chats[0].CreatedAt))
}

func TestChat_SendsHistory(t *testing.T) {
	repo := newMemRepo()
	user := repo.addUser(&models.User{Email: "a@example.com"})
	repo.chats = []*models.ChatMessage{
		{UserID: user.ID, Role: models.ChatRoleUser, Content: "Hi"},
		{UserID: user.ID, Role: models.ChatRoleAssistant, Content: "Hello!"},
	}
	limits := new(mockLimits)
	limits.On("CanChat", mock.Anything, mock.Anything).Return(entitlement.Decision{Allowed: true, Unlimited: true, Limit: -1, Remaining: -1}, nil)
	inference := new(mockInference)
	inference.On("Chat", mock.Anything, []ai.ChatTurn{
		{Role: models.ChatRoleUser, Content: "Hi"},
		{Role: models.ChatRoleAssistant, Content: "Hello!"},
	}, "And cacti?").Return("Let them dry out.", nil)

	resp, err := newTestChat(repo, limits, inference).Send(context.Background(), user.ID, "And cacti?")
	require.NoError(t, err)
	assert.True(t, resp.Unlimited)
	assert.Equal(t, -1, resp.Remaining)
	inference.AssertExpectations(t)
}

func TestChat_FilterRunsFirst(t *testing.T) {
	limits := new(mockLimits)
	inference := new(mockInference)
	svc := newTestChat(newMemRepo(), limits, inference)

	_, err := svc.Send(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, moderation.ErrEmpty)
	_, err = svc.Send(context.Background(), uuid.New(), "this is bullshit")
	assert.ErrorIs(t, err, moderation.ErrBlocked)
	limits.AssertNotCalled(t, "CanChat")
	inference.AssertNotCalled(t, "Chat")
}

func TestChat_DeniedAtDailyCeiling(t *testing.T) {
	repo := newMemRepo()
	user := repo.addUser(&models.User{Email: "a@example.com"})
	limits := new(mockLimits)
	limits.On("CanChat", mock.Anything, mock.Anything).
		Return(entitlement.Decision{Limit: 5, Used: 5, Reason: entitlement.LimitChats}, nil)
	inference := new(mockInference)

	_, err := newTestChat(repo, limits, inference).Send(context.Background(), user.ID, "One more?")
	var deniedErr *entitlement.DeniedError
	require.True(t, errors.As(err, &deniedErr))
	assert.Contains(t, deniedErr.Error(), "5 free messages")
	inference.AssertNotCalled(t, "Chat")
	assert.Empty(t, repo.chats)
}

func TestChat_FailedReplyUsesNoQuota(t *testing.T) {
	repo := newMemRepo()
	user := repo.addUser(&models.User{Email: "a@example.com"})
	limits := new(mockLimits)
	limits.On("CanChat", mock.Anything, mock.Anything).Return(allowed, nil)
	inference := new(mockInference)
	inference.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("", ai.ErrUnavailable)

	_, err := newTestChat(repo, limits, inference).Send(context.Background(), user.ID, "Hello")
	assert.ErrorIs(t, err, ai.ErrUnavailable)
	assert.Empty(t, repo.chats)
}

func TestChat_History(t *testing.T) {
	repo := newMemRepo()
	user := repo.addUser(&models.User{Email: "a@example.com"})
	svc := newTestChat(repo, new(mockLimits), new(mockInference))

	msgs, err := svc.History(context.Background(), user.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}
