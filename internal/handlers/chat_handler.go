package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type chatService interface {
	Send(ctx context.Context, userID uuid.UUID, message string) (*dto.ChatResponse, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type ChatHandler struct {
	chat chatService
}

func NewChatHandler(chat chatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.ChatRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	resp, err := h.chat.Send(c.UserContext(), userID, req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	msgs, err := h.chat.History(c.UserContext(), userID, queryInt(c, "limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": msgs})
}
